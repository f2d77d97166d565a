package settings

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screens/screentest"
)

func loaded(t *testing.T) (*SettingsScreen, *screentest.Harness) {
	t.Helper()
	h := screentest.New(t)
	s := New(h.Env)
	t.Cleanup(s.Close)
	s.Update(s.Init()())
	return s, h
}

func choose(s *SettingsScreen, idx int) tea.Cmd {
	s.menu.Selected = idx
	_, cmd := s.Update(screentest.Key("enter"))
	return cmd
}

// finish runs an async save and feeds its result back.
func finish(t *testing.T, s *SettingsScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	require.True(t, s.busy)
	_, next := s.Update(cmd())
	return next
}

func TestLoadShowsAccount(t *testing.T) {
	s, _ := loaded(t)
	require.NotNil(t, s.user)
	assert.Equal(t, "Ana", s.user.Name)
	assert.Equal(t, 5, s.goal)
	assert.Contains(t, s.View(100, 40), screentest.Email)
}

func TestChangeDailyGoal(t *testing.T) {
	s, h := loaded(t)

	assert.Nil(t, choose(s, 0))
	require.Equal(t, modeGoal, s.mode)

	s.Update(screentest.Key("l"))
	_, cmd := s.Update(screentest.Key("enter"))
	finish(t, s, cmd)

	assert.Equal(t, modeMenu, s.mode)
	assert.Equal(t, 10, s.goal)
	assert.Equal(t, "Daily goal set to 10.", s.notice)

	goal, err := h.Env.Prefs.DailyGoal(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 10, goal)
}

func TestEditName(t *testing.T) {
	s, _ := loaded(t)

	choose(s, 1)
	require.Equal(t, modeName, s.mode)
	assert.True(t, s.CapturingInput())
	assert.Equal(t, "Ana", s.fields[0].Value())

	s.fields[0].SetValue("Ana Maria")
	_, cmd := s.Update(screentest.Key("enter"))
	finish(t, s, cmd)

	assert.Equal(t, modeMenu, s.mode)
	assert.Equal(t, "Ana Maria", s.user.Name)
	assert.Equal(t, "Name updated.", s.notice)
}

func TestInvalidNameKeepsForm(t *testing.T) {
	s, h := loaded(t)

	choose(s, 1)
	s.fields[0].SetValue("A")
	_, cmd := s.Update(screentest.Key("enter"))
	finish(t, s, cmd)

	assert.Equal(t, modeName, s.mode)
	assert.NotEmpty(t, s.errMsg)
	assert.Equal(t, 0, h.API.Hits("PUT /user/profile"))

	s.Update(screentest.Key("esc"))
	assert.Equal(t, modeMenu, s.mode)
	assert.Empty(t, s.errMsg)
}

func TestPasswordFormCyclesFocus(t *testing.T) {
	s, _ := loaded(t)

	choose(s, 2)
	require.Equal(t, modePassword, s.mode)
	require.Len(t, s.fields, 3)

	s.Update(screentest.Key("tab"))
	assert.Equal(t, 1, s.focus)
	s.Update(screentest.Key("up"))
	s.Update(screentest.Key("up"))
	assert.Equal(t, 2, s.focus)
}

func TestSignedOutSaveGoesToLogin(t *testing.T) {
	s, h := loaded(t)
	require.NoError(t, h.Auth.Clear(t.Context()))

	choose(s, 1)
	s.fields[0].SetValue("Ana Maria")
	_, cmd := s.Update(screentest.Key("enter"))
	next := finish(t, s, cmd)

	require.NotNil(t, next)
	reset, ok := next().(router.ResetScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "login", reset.Screen.Title())
}

func TestCheckServer(t *testing.T) {
	s, _ := loaded(t)

	finish(t, s, choose(s, 4))
	assert.Empty(t, s.errMsg)
	assert.Contains(t, s.notice, "Server OK")
}

func TestEscPops(t *testing.T) {
	s, _ := loaded(t)
	_, cmd := s.Update(screentest.Key("esc"))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
