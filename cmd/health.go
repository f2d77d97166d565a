package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the Linguaku API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		h, err := d.api.Health(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status:  %s\n", orDefault(h.Status, "ok"))
		fmt.Fprintf(out, "Latency: %s\n", h.Latency.Round(time.Millisecond))
		if h.Version != "" {
			compat := "compatible"
			if !h.Compatible {
				compat = "not compatible with this client"
			}
			fmt.Fprintf(out, "Version: %s (%s)\n", h.Version, compat)
		}
		if !h.OK {
			return fmt.Errorf("API reported unhealthy status %q", h.Status)
		}
		return nil
	},
}
