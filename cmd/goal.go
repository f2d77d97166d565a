package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/prefs"
)

var goalCmd = &cobra.Command{
	Use:   "goal [n]",
	Short: "Show or set the daily practice goal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			n, err := d.prefs.DailyGoal(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Daily goal: %d practices (options: %v)\n", n, prefs.GoalOptions)
			return nil
		}

		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid goal %q: %w", args[0], err)
		}
		if err := d.prefs.SetDailyGoal(ctx, n); err != nil {
			return err
		}
		fmt.Fprintf(out, "Daily goal set to %d practices.\n", n)
		return nil
	},
}
