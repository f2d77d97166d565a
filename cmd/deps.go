package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/auth"
	"github.com/linguaku/linguaku/internal/catalog"
	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/history"
	"github.com/linguaku/linguaku/internal/logging"
	"github.com/linguaku/linguaku/internal/prefs"
	"github.com/linguaku/linguaku/internal/store"
)

// deps is everything a command needs, built from flags and environment.
type deps struct {
	store   *store.Store
	logger  *slog.Logger
	api     *gateway.Client
	authKV  *auth.KVStore
	session *auth.SessionContext
	auth    *auth.Service
	catalog *catalog.Loader
	history *history.Manager
	prefs   *prefs.Prefs
	closers []io.Closer
}

// openDeps opens the store and builds the service graph. When logFile is
// set the logger writes to linguaku.log next to the database instead of
// stderr, because the TUI owns the terminal.
func openDeps(cmd *cobra.Command, logFile bool) (*deps, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{store: st}

	logCfg := logging.ConfigFromEnv()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		logCfg.Level = lvl
	}
	if logFile {
		logger, closer, err := logging.OpenFile(filepath.Join(filepath.Dir(dbPath), "linguaku.log"), logCfg)
		if err != nil {
			st.Close()
			return nil, err
		}
		d.logger = logger
		d.closers = append(d.closers, closer)
	} else {
		d.logger, _ = logging.New(os.Stderr, logCfg)
	}

	apiCfg := gateway.ConfigFromEnv()
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		apiCfg.BaseURL = u
	}

	d.authKV = auth.NewKVStore(st.KVRepo())
	d.session = auth.NewSessionContext(d.authKV)
	d.api = gateway.New(apiCfg,
		gateway.WithTokenSource(d.session),
		gateway.WithRecorder(gateway.NewStoreRecorder(st.EventRepo(), d.logger)),
		gateway.WithLogger(d.logger),
	)
	d.auth = auth.NewService(d.api, d.authKV, d.logger)
	d.catalog = catalog.NewLoader(d.api, st.CacheRepo(), catalog.WithLogger(d.logger))
	d.history = history.NewManager(d.api, d.logger)
	d.prefs = prefs.New(st.KVRepo())
	return d, nil
}

// Close releases the store and log file.
func (d *deps) Close() {
	for _, c := range d.closers {
		c.Close()
	}
	d.store.Close()
}

// requireSession fails early with a readable message when nobody is
// signed in.
func (d *deps) requireSession(ctx context.Context) error {
	if !d.session.SignedIn(ctx) {
		return fmt.Errorf("not signed in; run `linguaku login` first")
	}
	return nil
}
