package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

var (
	forceSize bool
	showUsage bool

	sizeCmd = &cobra.Command{
		Use:   "size [site]",
		Short: "Print the size of a site",
		Long: `Print the size of a site given by id, domain or child slug.
Without an argument the primary site is used. Cached values are served
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSize,
	}

	refreshCmd = &cobra.Command{
		Use:   "refresh [site]",
		Short: "Recompute and store the size of a site",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRefresh,
	}
)

func init() {
	sizeCmd.Flags().BoolVarP(&forceSize, "force", "f", false, "Recompute instead of serving a cached value")
	sizeCmd.Flags().BoolVar(&showUsage, "usage", false, "Print the usage report against the site's quota")
}

func siteArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runSize(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	id, err := a.sizes.ResolveTenant(ctx, siteArg(args))
	if err != nil {
		return err
	}

	if showUsage {
		report, err := a.sizes.Report(ctx, id, forceSize)
		if err != nil {
			return err
		}
		if outputJSON {
			return json.NewEncoder(os.Stdout).Encode(report)
		}
		fmt.Printf("site %s: %s of %d bytes (%d%%)\n", id, report.UsedReadable, report.AllowedBytes, report.UsedPercent)
		return nil
	}

	size, err := a.sizes.GetSize(ctx, id, forceSize)
	if err != nil {
		return err
	}
	return printSize(id, size)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	id, err := a.sizes.ResolveTenant(ctx, siteArg(args))
	if err != nil {
		return err
	}

	size, err := a.sizes.Refresh(ctx, id)
	if err != nil {
		return err
	}
	return printSize(id, size)
}

func printSize(id domain.TenantID, size domain.Size) error {
	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"site_id": int64(id),
			"size":    size.Encode(),
			"status":  size.Kind().String(),
		})
	}
	fmt.Printf("site %s: %d (%s)\n", id, size.Encode(), size)
	return nil
}
