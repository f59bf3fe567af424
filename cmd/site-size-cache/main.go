package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile    string
	outputJSON bool

	rootCmd = &cobra.Command{
		Use:   "site-size-cache",
		Short: "Compute and cache the storage footprint of network sites",
		Long: `site-size-cache reports how many bytes each site of a multi-site
network uses across its local uploads directory and an S3 bucket, caching
results in memory and in SQLite so the bucket is not listed on every request.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to configuration file (defaults and SITESIZE_* environment only when empty)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd, sizeCmd, refreshCmd, sitesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
