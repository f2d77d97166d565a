package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/screens/screentest"
)

func seeded(t *testing.T) (*HistoryScreen, *screentest.Harness) {
	t.Helper()
	h := screentest.New(t)
	now := time.Now()
	h.API.AddHistory(
		model.HistoryRecord{ID: "old", MaterialID: "m2", MaterialTitle: "Numbers", ItemText: "One two", Transcript: "one", Score: 50, CreatedAt: now.Add(-48 * time.Hour)},
		model.HistoryRecord{ID: "new", MaterialID: "m1", MaterialTitle: "Greetings", ItemText: "Good morning", Transcript: "good morning", Score: 100, CreatedAt: now.Add(-time.Hour)},
	)
	s := New(h.Env)
	s.Update(s.Init()())
	require.True(t, s.loaded)
	require.Empty(t, s.errMsg)
	return s, h
}

func TestListsNewestFirst(t *testing.T) {
	s, _ := seeded(t)

	require.Len(t, s.records, 2)
	assert.Equal(t, "new", s.records[0].ID)
	assert.Contains(t, s.View(100, 40), "Greetings")
}

func TestDeleteAfterConfirm(t *testing.T) {
	s, h := seeded(t)

	_, cmd := s.Update(screentest.Key("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, confirmDelete, s.confirm)

	_, cmd = s.Update(screentest.Key("y"))
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.False(t, s.busy)
	require.Len(t, s.records, 1)
	assert.Equal(t, "old", s.records[0].ID)
	assert.Equal(t, 1, h.API.HistoryLen())
}

func TestCancelledClearKeepsRecords(t *testing.T) {
	s, h := seeded(t)

	s.Update(screentest.Key("c"))
	_, cmd := s.Update(screentest.Key("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, confirmNone, s.confirm)
	assert.Len(t, s.records, 2)
	assert.Equal(t, 2, h.API.HistoryLen())
}

func TestClearAll(t *testing.T) {
	s, h := seeded(t)

	s.Update(screentest.Key("c"))
	_, cmd := s.Update(screentest.Key("y"))
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Empty(t, s.records)
	assert.Equal(t, 0, h.API.HistoryLen())
}

func TestEnterTogglesDetails(t *testing.T) {
	s, _ := seeded(t)

	s.Update(screentest.Key("enter"))
	assert.True(t, s.expanded["new"])
	s.Update(screentest.Key("enter"))
	assert.False(t, s.expanded["new"])
}
