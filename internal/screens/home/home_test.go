package home

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screens/screentest"
)

func TestDashboardShowsGoalProgress(t *testing.T) {
	h := screentest.New(t)
	now := time.Now()
	h.API.AddHistory(
		model.HistoryRecord{ID: "a", Score: 80, CreatedAt: now},
		model.HistoryRecord{ID: "b", Score: 60, CreatedAt: now},
		model.HistoryRecord{ID: "c", Score: 90, CreatedAt: now.AddDate(0, 0, -3)},
	)
	require.NoError(t, h.Env.Prefs.SetDailyGoal(t.Context(), 3))

	s := New(h.Env)
	s.Update(s.Init()())

	require.True(t, s.loaded)
	assert.Empty(t, s.errMsg)
	assert.Equal(t, "Ana", s.name)
	assert.Equal(t, 2, s.goal.Done)
	assert.Equal(t, 3, s.goal.Goal)
	assert.Equal(t, 1, h.API.Hits("GET /practice/history"))

	st := s.Status()
	assert.Equal(t, "Ana", st.User)
	assert.Equal(t, 2, st.GoalDone)
	assert.Equal(t, 3, st.GoalTotal)
}

func TestStaleDashboardIgnored(t *testing.T) {
	h := screentest.New(t)

	s := New(h.Env)
	cmd := s.Init()
	s.Close()
	s.Update(cmd())

	assert.False(t, s.loaded)
}

func TestMenuPushesScreens(t *testing.T) {
	h := screentest.New(t)
	s := New(h.Env)

	for i, title := range []string{"Materials", "Progress", "History", "Settings"} {
		s.menu.Selected = i
		_, cmd := s.Update(screentest.Key("enter"))
		require.NotNil(t, cmd, title)
		push, ok := cmd().(router.PushScreenMsg)
		require.True(t, ok, title)
		assert.Equal(t, title, push.Screen.Title())
	}
}

func TestSignOutGoesToLogin(t *testing.T) {
	h := screentest.New(t)
	s := New(h.Env)

	s.menu.Selected = 4
	_, cmd := s.Update(screentest.Key("enter"))
	require.NotNil(t, cmd)
	_, cmd = s.Update(cmd())
	require.NotNil(t, cmd)

	reset, ok := cmd().(router.ResetScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "login", reset.Screen.Title())
	assert.False(t, h.Env.Session.SignedIn(t.Context()))
}

func TestMascotFollowsGoal(t *testing.T) {
	h := screentest.New(t)
	require.NoError(t, h.Env.Prefs.SetDailyGoal(t.Context(), 1))
	h.API.AddHistory(model.HistoryRecord{ID: "a", Score: 80, CreatedAt: time.Now()})

	s := New(h.Env)
	s.Update(s.Init()())
	require.True(t, s.goal.Reached())
	assert.Equal(t, MascotCelebrating, MascotFor(s.goal))
	assert.Equal(t, MascotNudge, MascotFor(analytics.GoalProgress(0, 3)))
	assert.NotEmpty(t, s.View(100, 40))
}
