package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/app"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/speech"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	e := &env.Env{
		Auth:     d.auth,
		Session:  d.session,
		API:      d.api,
		Catalog:  d.catalog,
		History:  d.history,
		Prefs:    d.prefs,
		Language: "en",
		Logger:   d.logger,
	}

	// Typed recognition cannot share stdin with the TUI, so the practice
	// screen feeds it through a pipe.
	cfg := speech.ConfigFromEnv()
	e.Language = cfg.Language
	var in io.Reader
	if cfg.Provider == "typed" {
		r, w := io.Pipe()
		defer w.Close()
		in, e.Typing = r, w
	}
	rec, err := speech.NewRecognizer(ctx, cfg, in, d.logger)
	if err != nil {
		return fmt.Errorf("speech recognizer: %w", err)
	}
	e.Recognizer = rec

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	d.logger.Info("starting", "version", version, "speech", cfg.Provider)
	return app.Run(ctx, app.Options{Env: e, SkipSplash: noSplash})
}
