package prefs

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/store"
)

func openKV(t *testing.T) store.KVRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.KVRepo()
}

func TestDailyGoal(t *testing.T) {
	kv := openKV(t)
	p := New(kv)
	ctx := context.Background()

	n, err := p.DailyGoal(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDailyGoal, n)

	require.NoError(t, p.SetDailyGoal(ctx, 10))
	n, err = p.DailyGoal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	assert.ErrorIs(t, p.SetDailyGoal(ctx, 7), ErrInvalidGoal)
	n, _ = p.DailyGoal(ctx)
	assert.Equal(t, 10, n)

	require.NoError(t, kv.Put(ctx, store.KeyDailyGoal, "lots"))
	n, err = p.DailyGoal(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDailyGoal, n)
}
