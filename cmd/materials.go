package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/catalog"
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List practice materials grouped by level",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}

		// The loader may report twice: the cached list, then the network
		// list. Only the last one is printed.
		var last *catalog.Snapshot
		report := func(s catalog.Snapshot) { last = &s }
		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			err = d.catalog.Refresh(ctx, report)
		} else {
			err = d.catalog.Load(ctx, report)
		}
		if err != nil {
			return err
		}
		printMaterials(cmd.OutOrStdout(), *last)
		return nil
	},
}

func printMaterials(out io.Writer, snap catalog.Snapshot) {
	if len(snap.Materials) == 0 {
		fmt.Fprintln(out, "No materials available yet.")
		return
	}

	for _, g := range catalog.GroupByLevel(snap.Materials) {
		fmt.Fprintf(out, "%s %s (%d)\n", g.Category.Icon(), g.Level, len(g.Materials))
		for _, m := range g.Materials {
			fmt.Fprintf(out, "  %-26s  %-40s  %d items\n", m.ID, m.Title, m.ItemCount())
		}
		fmt.Fprintln(out)
	}

	stats := catalog.Summarize(snap.Materials)
	source := snap.Source.String()
	if snap.Stale {
		source += ", stale"
	}
	fmt.Fprintf(out, "%d materials, %d items (%s, fetched %s)\n",
		stats.Materials, stats.Items, source, snap.FetchedAt.Local().Format("2006-01-02 15:04"))
}

func init() {
	materialsCmd.Flags().Bool("refresh", false, "Skip the local cache")
}
