// Package screentest builds a signed-in screen environment over the fake
// API and an in-memory store.
package screentest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/auth"
	"github.com/linguaku/linguaku/internal/catalog"
	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/gateway/fakeapi"
	"github.com/linguaku/linguaku/internal/history"
	"github.com/linguaku/linguaku/internal/prefs"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/speech"
	"github.com/linguaku/linguaku/internal/store"
)

// Email and Password of the signed-in test user.
const (
	Email    = "ana@example.com"
	Password = "Secret1!"
)

// Harness is an Env plus handles on its fakes.
type Harness struct {
	Env        *env.Env
	API        *fakeapi.Server
	Store      *store.Store
	Auth       *auth.KVStore
	Recognizer *speech.Mock
}

// New returns a Harness whose user is signed in. Screen factories return
// named stubs so navigation can be asserted.
func New(t *testing.T) *Harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	api := fakeapi.New(t)
	user := api.AddUser("Ana", Email, Password, true)

	kv := auth.NewKVStore(s.KVRepo())
	require.NoError(t, kv.Set(context.Background(), api.IssueToken(Email), user))

	sc := auth.NewSessionContext(kv)
	cfg := gateway.DefaultConfig()
	cfg.BaseURL = api.URL()
	cfg.Timeout = 5 * time.Second
	client := gateway.New(cfg,
		gateway.WithTokenSource(sc),
		gateway.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)

	rec := speech.NewMock()
	e := &env.Env{
		Auth:       auth.NewService(client, kv, nil),
		Session:    sc,
		API:        client,
		Catalog:    catalog.NewLoader(client, s.CacheRepo()),
		History:    history.NewManager(client, nil),
		Prefs:      prefs.New(s.KVRepo()),
		Recognizer: rec,
		Language:   "en",
		Home:       func() screen.Screen { return &Stub{Name: "home"} },
		Login:      func() screen.Screen { return &Stub{Name: "login"} },
	}
	return &Harness{Env: e, API: api, Store: s, Auth: kv, Recognizer: rec}
}

// Stub is a placeholder screen.
type Stub struct {
	Name string
}

func (s *Stub) Init() tea.Cmd                           { return nil }
func (s *Stub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *Stub) View(int, int) string                    { return s.Name }
func (s *Stub) Title() string                           { return s.Name }

// Exec runs cmd and returns its message. Batches are flattened into the
// returned slice; nil commands are skipped.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Exec(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Key builds a key press for a printable key or a named special key
// ("enter", "esc", "up", "down", "tab", "space").
func Key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

// Type sends each rune of text to s as a key press.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}

// Ctrl builds a ctrl+r style key press.
func Ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}
