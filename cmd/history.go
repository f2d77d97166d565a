package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or edit your practice history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past practice attempts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}
		records, err := d.history.Load(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No practice history yet.")
			return nil
		}
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		now := time.Now()
		fmt.Fprintf(out, "%-24s  %-28s  %5s  %s\n", "ID", "Material", "Score", "When")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, r := range records {
			title := r.MaterialTitle
			if title == "" {
				title = "Practice"
			}
			if len(title) > 28 {
				title = title[:28]
			}
			fmt.Fprintf(out, "%-24s  %-28s  %5d  %s\n", r.ID, title, r.Score, history.TimeAgo(r.CreatedAt, now))
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one practice attempt",
	Args:  cobra.ExactArgs(1),
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
		if fromLog, _ := cmd.Flags().GetBool("practice"); fromLog {
			if err := d.api.DeletePractice(ctx, args[0]); err != nil {
				return err
			}
		} else if err := d.history.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all practice history",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			answer, err := newPrompter(cmd).ask("Delete all practice history? [y/N] ")
			if err != nil {
				return err
			}
			if !strings.EqualFold(strings.TrimSpace(answer), "y") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}
		if err := d.history.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Maximum number of attempts to show (0 = all)")
	historyDeleteCmd.Flags().Bool("practice", false, "Delete from the practice log the dashboard counts instead of the history list")
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd, historyDeleteCmd, historyClearCmd)
}
