package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/practice"
	"github.com/linguaku/linguaku/internal/speech"
)

var practiceCmd = &cobra.Command{
	Use:   "practice <material-id>",
	Short: "Practice one material without the full-screen UI",
	Long: `Practice one material. With the typed speech provider (the default) type
what you said and finish with an empty line. The openai and gemini providers
transcribe the recording given by LINGUAKU_AUDIO_FILE.`,
	Args: cobra.ExactArgs(1),
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
		material, err := d.catalog.Find(ctx, args[0])
		if err != nil {
			return err
		}

		cfg := speech.ConfigFromEnv()
		rec, err := speech.NewRecognizer(ctx, cfg, cmd.InOrStdin(), d.logger)
		if err != nil {
			return fmt.Errorf("speech recognizer: %w", err)
		}

		sess := practice.NewSession(*material, rec, d.api, d.session,
			practice.WithLogger(d.logger),
			practice.WithLanguage(cfg.Language),
		)
		defer sess.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n  %s\n\n", material.Title, material.TargetText())
		if cfg.Provider == "typed" {
			fmt.Fprintln(out, "Type what you said. Finish with an empty line.")
		}

		result, err := practiceOnce(ctx, sess)
		if err != nil {
			return err
		}
		printResult(out, material.TargetText(), result)
		return nil
	},
}

// practiceOnce records until the recognizer finishes, then analyzes.
func practiceOnce(ctx context.Context, sess *practice.Session) (*model.PracticeResult, error) {
	if err := sess.Start(ctx); err != nil {
		return nil, err
	}
	for sess.Snapshot().State == practice.Recording {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-sess.Changes():
		}
	}

	snap := sess.Snapshot()
	if snap.State == practice.Errored {
		return nil, fmt.Errorf("recognition failed: %w", snap.Err)
	}
	return sess.Analyze(ctx)
}

func printResult(out io.Writer, target string, r *model.PracticeResult) {
	band := analytics.BandFor(r.Score)
	fmt.Fprintf(out, "\nScore: %d (%s)\n", r.Score, band)
	if r.TotalWords > 0 {
		fmt.Fprintf(out, "Words: %d/%d correct\n", r.CorrectWords, r.TotalWords)
	}

	words := practice.Highlight(target, r)
	marked := make([]string, len(words))
	for i, w := range words {
		switch w.Status {
		case practice.WordMistake:
			marked[i] = "[" + w.Text + "]"
		case practice.WordMissing:
			marked[i] = "(" + w.Text + ")"
		default:
			marked[i] = w.Text
		}
	}
	fmt.Fprintf(out, "Text:  %s\n", strings.Join(marked, " "))
	if len(r.MistakeWords) > 0 {
		fmt.Fprintf(out, "Practice these: %s\n", strings.Join(r.MistakeWords, ", "))
	}
	if r.Feedback != "" {
		fmt.Fprintf(out, "\n%s\n", r.Feedback)
	}
}
