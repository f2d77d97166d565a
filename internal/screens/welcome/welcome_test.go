package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

func newTestWelcome() (*WelcomeScreen, *int) {
	calls := 0
	return New(func() screen.Screen {
		calls++
		return &stubScreen{}
	}), &calls
}

func sendTicks(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for range n {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func TestBannerAppearsAfterDelay(t *testing.T) {
	w, _ := newTestWelcome()
	assert.NotContains(t, w.View(100, 30), "practice daily")

	sendTicks(w, 3)
	assert.Contains(t, w.View(100, 30), "practice daily")
}

func TestAutoTransitionAfterAnimation(t *testing.T) {
	w, calls := newTestWelcome()

	cmd := sendTicks(w, int(totalDur/tickInterval))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.NotNil(t, msg.Screen)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, totalDur, w.elapsed)
}

func TestKeypressSkipsAnimation(t *testing.T) {
	w, calls := newTestWelcome()
	sendTicks(w, 2)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' ', Text: " "})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	assert.Equal(t, 1, *calls)
}

func TestNextCalledOnce(t *testing.T) {
	w, calls := newTestWelcome()

	w.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b', Text: "b"})
	assert.Nil(t, cmd)

	// Ticks after the transition are ignored.
	assert.Nil(t, sendTicks(w, 20))
	assert.Equal(t, 1, *calls)
}

func TestCompactBanner(t *testing.T) {
	assert.True(t, strings.Contains(RenderBanner(40), "L I N G U A K U"))
}
