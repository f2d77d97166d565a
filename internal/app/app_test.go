package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screens/screentest"
)

func TestStartsAtHomeWhenSignedIn(t *testing.T) {
	h := screentest.New(t)

	m := New(t.Context(), Options{Env: h.Env, SkipSplash: true})
	assert.Equal(t, "Home", m.router.Active().Title())
}

func TestStartsAtLoginWhenSignedOut(t *testing.T) {
	h := screentest.New(t)
	require.NoError(t, h.Env.Auth.Logout(t.Context()))

	m := New(t.Context(), Options{Env: h.Env, SkipSplash: true})
	assert.Equal(t, "Sign In", m.router.Active().Title())
}

func TestSplashFirst(t *testing.T) {
	h := screentest.New(t)

	m := New(t.Context(), Options{Env: h.Env})
	assert.NotEqual(t, "Home", m.router.Active().Title())
}

func TestEscPopsUnlessCapturing(t *testing.T) {
	h := screentest.New(t)
	m := New(t.Context(), Options{Env: h.Env, SkipSplash: true})

	m.router.Push(&screentest.Stub{Name: "pushed"})
	require.Equal(t, 2, m.router.Depth())

	_, cmd := m.Update(screentest.Key("esc"))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)

	// The sign-in form keeps esc for itself.
	m.router.Push(h.Env.Login())
	_, cmd = m.Update(screentest.Key("esc"))
	if cmd != nil {
		_, ok = cmd().(router.PopScreenMsg)
		assert.False(t, ok)
	}
}

func TestCtrlCQuits(t *testing.T) {
	h := screentest.New(t)
	m := New(t.Context(), Options{Env: h.Env, SkipSplash: true})

	_, cmd := m.Update(screentest.Ctrl('c'))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestViewRendersHeaderAndFooter(t *testing.T) {
	h := screentest.New(t)
	m := New(t.Context(), Options{Env: h.Env, SkipSplash: true})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v := next.(AppModel).View()
	assert.True(t, v.AltScreen)
	assert.NotNil(t, v.Content)
}
