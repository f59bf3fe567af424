package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/units"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

var (
	siteQuota string

	sitesCmd = &cobra.Command{
		Use:   "sites",
		Short: "Manage the network site directory",
	}

	sitesAddCmd = &cobra.Command{
		Use:   "add <id> <domain>",
		Short: "Register a site",
		Args:  cobra.ExactArgs(2),
		RunE:  runSitesAdd,
	}

	sitesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered sites with their cached sizes",
		Args:  cobra.NoArgs,
		RunE:  runSitesList,
	}
)

func init() {
	sitesAddCmd.Flags().StringVar(&siteQuota, "quota", "", "Site quota, e.g. 2GiB (network default when empty)")
	sitesCmd.AddCommand(sitesAddCmd, sitesListCmd)
}

func runSitesAdd(cmd *cobra.Command, args []string) error {
	id, err := domain.ParseTenantID(args[0])
	if err != nil {
		return err
	}

	var quota int64
	if siteQuota != "" {
		q, err := units.ParseBase2Bytes(siteQuota)
		if err != nil {
			return fmt.Errorf("%w: quota %q: %v", domain.ErrInvalidInput, siteQuota, err)
		}
		quota = int64(q)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.CreateTenant(cmd.Context(), &domain.Tenant{ID: id, Domain: args[1], QuotaBytes: quota}); err != nil {
		return fmt.Errorf("failed to add site %s: %w", id, err)
	}
	fmt.Printf("added site %s (%s)\n", id, args[1])
	return nil
}

type siteRow struct {
	ID         int64  `json:"id"`
	Domain     string `json:"domain"`
	QuotaBytes int64  `json:"quota_bytes"`
	Size       *int64 `json:"size,omitempty"`
	LastUpdate string `json:"last_update,omitempty"`
}

func runSitesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	tenants, err := a.store.ListTenants(ctx)
	if err != nil {
		return err
	}

	defaultQuota, _ := a.cfg.Sites.GetDefaultQuota()
	rows := make([]siteRow, 0, len(tenants))
	for _, t := range tenants {
		row := siteRow{ID: int64(t.ID), Domain: t.Domain, QuotaBytes: t.AllowedBytes(defaultQuota)}
		record, err := a.store.GetSizeRecord(ctx, t.ID)
		if err != nil {
			return err
		}
		if record != nil {
			v := record.Size.Encode()
			row.Size = &v
			row.LastUpdate = humanize.Time(record.LastUpdate)
		}
		rows = append(rows, row)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tQUOTA\tSIZE\tUPDATED")
	for _, r := range rows {
		size, updated := "-", "-"
		if r.Size != nil {
			size = domain.DecodeSize(*r.Size).String()
			updated = r.LastUpdate
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Domain, humanize.IBytes(uint64(r.QuotaBytes)), size, updated)
	}
	return w.Flush()
}
