package cmd

import (
	"github.com/linguaku/linguaku/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linguaku",
	Short: "Pronunciation practice in your terminal",
	Long:  "Linguaku: practice reading aloud, get a pronunciation score and track your progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LINGUAKU_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides LINGUAKU_API_URL env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LINGUAKU_LOG_LEVEL env var)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome screen")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, passwordCmd, profileCmd)
	rootCmd.AddCommand(materialsCmd, practiceCmd, historyCmd, progressCmd, goalCmd)
	rootCmd.AddCommand(healthCmd, requestsCmd, resetCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LINGUAKU_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
