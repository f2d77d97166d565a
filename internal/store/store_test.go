package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestOpenFileDB.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "linguaku.db")
	require.NoError(t, EnsureDir(path))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestDefaultDBPath_Env(t *testing.T) {
	want := filepath.Join(t.TempDir(), "x", "custom.db")
	t.Setenv("LINGUAKU_DB", want)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.DirExists(t, filepath.Dir(want))
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINGUAKU_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "linguaku", "linguaku.db"), got)
}

func TestKV_GetPutDelete(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()
	ctx := context.Background()

	_, err := kv.Get(ctx, KeyDailyGoal)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, KeyDailyGoal, "5"))
	got, err := kv.Get(ctx, KeyDailyGoal)
	require.NoError(t, err)
	assert.Equal(t, "5", got)

	require.NoError(t, kv.Put(ctx, KeyDailyGoal, "10"))
	got, err = kv.Get(ctx, KeyDailyGoal)
	require.NoError(t, err)
	assert.Equal(t, "10", got)

	require.NoError(t, kv.Delete(ctx, KeyDailyGoal))
	_, err = kv.Get(ctx, KeyDailyGoal)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, kv.Delete(ctx, KeyDailyGoal))
}

func TestKV_ApplyReplacesAtomically(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()
	ctx := context.Background()

	require.NoError(t, kv.Apply(ctx, map[string]string{
		KeyAuthToken: "tok-1",
		KeyUserData:  `{"name":"Ana"}`,
	}, nil))

	tok, err := kv.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	require.NoError(t, kv.Apply(ctx, nil, []string{KeyAuthToken, KeyUserData}))
	_, err = kv.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = kv.Get(ctx, KeyUserData)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKV_ApplyRollsBackOnCancel(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := kv.Apply(ctx, map[string]string{KeyAuthToken: "tok"}, nil)
	require.Error(t, err)

	_, err = kv.Get(context.Background(), KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

type item struct {
	Title string `json:"title"`
}

func TestCache_ReadWrite(t *testing.T) {
	s := openTestStore(t)
	repo := s.CacheRepo()
	ctx := context.Background()

	_, err := ReadCache[[]item](ctx, repo, KeyMaterialsCache)
	assert.ErrorIs(t, err, ErrNotFound)

	fetched := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, WriteCache(ctx, repo, KeyMaterialsCache, []item{{Title: "A"}, {Title: "B"}}, fetched))

	entry, err := ReadCache[[]item](ctx, repo, KeyMaterialsCache)
	require.NoError(t, err)
	assert.Equal(t, []item{{Title: "A"}, {Title: "B"}}, entry.Payload)
	assert.True(t, fetched.Equal(entry.FetchedAt))
}

func TestCache_Corrupt(t *testing.T) {
	s := openTestStore(t)
	repo := s.CacheRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, KeyMaterialsCache, []byte("{not json"), time.Now()))

	_, err := ReadCache[[]item](ctx, repo, KeyMaterialsCache)
	assert.True(t, errors.Is(err, ErrCacheCorrupt), "got %v", err)
}

func TestCacheEntry_IsFresh(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"just fetched", 0, true},
		{"one hour", time.Hour, true},
		{"one ms before ttl", MaterialsTTL - time.Millisecond, true},
		{"exactly ttl", MaterialsTTL, false},
		{"past ttl", MaterialsTTL + time.Minute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := CacheEntry[int]{FetchedAt: now.Add(-tt.age)}
			assert.Equal(t, tt.want, e.IsFresh(now, MaterialsTTL))
		})
	}
}

func TestEvents_AppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []RequestEventData{
		{RequestID: "r1", Method: "GET", Path: "/materials", Attempt: 1, Success: false, ErrorMessage: "timeout", Timestamp: base},
		{RequestID: "r1", Method: "GET", Path: "/materials", Status: 200, Attempt: 2, LatencyMs: 120, Success: true, Timestamp: base.Add(time.Second)},
		{RequestID: "r2", Method: "POST", Path: "/practice/analyze", Status: 500, Attempt: 1, LatencyMs: 80, Timestamp: base.Add(2 * time.Second)},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendRequest(ctx, e))
	}

	all, err := repo.QueryRequests(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/practice/analyze", all[0].Path, "newest first")

	limited, err := repo.QueryRequests(ctx, QueryOpts{Limit: 1, Path: "/materials"})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 2, limited[0].Attempt)

	ranged, err := repo.QueryRequests(ctx, QueryOpts{From: base.Add(500 * time.Millisecond), To: base.Add(1500 * time.Millisecond)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, 200, ranged[0].Status)

	got, err := repo.GetRequest(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "timeout", got.ErrorMessage)
	assert.True(t, base.Equal(got.Timestamp))

	missing, err := repo.GetRequest(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEvents_UsageByPath(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []RequestEventData{
		{RequestID: "a", Method: "GET", Path: "/materials", Attempt: 1, LatencyMs: 100},
		{RequestID: "a", Method: "GET", Path: "/materials", Attempt: 2, LatencyMs: 300, Success: true, Status: 200},
		{RequestID: "b", Method: "GET", Path: "/materials", Attempt: 1, LatencyMs: 200, Success: true, Status: 200},
	} {
		require.NoError(t, repo.AppendRequest(ctx, e))
	}

	usage, err := repo.UsageByPath(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, PathUsage{
		Method:       "GET",
		Path:         "/materials",
		Attempts:     3,
		Failures:     1,
		Requests:     2,
		AvgLatencyMs: 200,
	}, usage[0])
}
