package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect recorded API request attempts",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent request attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		path, _ := cmd.Flags().GetString("path")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryRequests(cmd.Context(), store.QueryOpts{Limit: limit, Path: path})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No requests recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-6s  %-32s  %-6s  %-3s  %-7s  %s\n",
			"ID", "Timestamp", "Method", "Path", "Status", "Try", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, e := range events {
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			p := e.Path
			if len(p) > 32 {
				p = p[:32]
			}
			status := "-"
			if e.Status > 0 {
				status = fmt.Sprint(e.Status)
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-6s  %-32s  %-6s  %-3d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Method,
				p,
				status,
				e.Attempt,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var requestsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one request attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetRequest(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:         %d\n", e.ID)
		fmt.Fprintf(out, "Request ID: %s\n", e.RequestID)
		fmt.Fprintf(out, "Time:       %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Request:    %s %s\n", e.Method, e.Path)
		fmt.Fprintf(out, "Attempt:    %d\n", e.Attempt)
		fmt.Fprintf(out, "Status:     %d\n", e.Status)
		fmt.Fprintf(out, "Latency:    %dms\n", e.LatencyMs)
		fmt.Fprintf(out, "Success:    %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:      %s\n", e.ErrorMessage)
		}
		return nil
	},
}

var requestsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show attempts, failures and latency per endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		usage, err := s.EventRepo().UsageByPath(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No requests recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-32s  %8s  %8s  %8s  %8s\n",
			"Method", "Path", "Requests", "Attempts", "Failures", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("─", 82))

		var requests, attempts, failures int
		for _, u := range usage {
			fmt.Fprintf(out, "%-6s  %-32s  %8d  %8d  %8d  %8d\n",
				u.Method, u.Path, u.Requests, u.Attempts, u.Failures, u.AvgLatencyMs)
			requests += u.Requests
			attempts += u.Attempts
			failures += u.Failures
		}

		fmt.Fprintln(out, strings.Repeat("─", 82))
		fmt.Fprintf(out, "%-6s  %-32s  %8d  %8d  %8d\n", "TOTAL", "", requests, attempts, failures)
		if attempts > 0 {
			fmt.Fprintf(out, "\nRetries: %d   Failure rate: %.1f%%\n",
				attempts-requests, float64(failures)*100/float64(attempts))
		}
		return nil
	},
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func init() {
	requestsListCmd.Flags().Int("limit", 50, "Maximum number of events to show")
	requestsListCmd.Flags().String("path", "", "Only show requests to this path")
	requestsListCmd.Flags().Bool("failed", false, "Only show failed attempts")

	requestsCmd.AddCommand(requestsListCmd, requestsViewCmd, requestsStatsCmd)
}
