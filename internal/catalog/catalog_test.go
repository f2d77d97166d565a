package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/store"
)

type fakeFetcher struct {
	mu        sync.Mutex
	materials []model.Material
	err       error
	calls     int
}

func (f *fakeFetcher) Materials(context.Context) ([]model.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.materials, nil
}

func (f *fakeFetcher) Material(_ context.Context, id string) (*model.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, m := range f.materials {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, errors.New("not found")
}

var (
	epoch  = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	cached = []model.Material{{ID: "m1", Title: "Greetings", Level: "Beginner"}}
	remote = []model.Material{
		{ID: "m1", Title: "Greetings", Level: "Beginner"},
		{ID: "m2", Title: "Travel", Level: "Intermediate"},
	}
)

type fixture struct {
	cache   store.CacheRepo
	fetcher *fakeFetcher
	now     time.Time
	loader  *Loader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{cache: s.CacheRepo(), fetcher: &fakeFetcher{materials: remote}, now: epoch}
	f.loader = NewLoader(f.fetcher, f.cache, WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) seed(t *testing.T, age time.Duration) {
	t.Helper()
	require.NoError(t, store.WriteCache(context.Background(), f.cache, store.KeyMaterialsCache, cached, f.now.Add(-age)))
}

func (f *fixture) load(t *testing.T) ([]Snapshot, error) {
	t.Helper()
	var got []Snapshot
	err := f.loader.Load(context.Background(), func(s Snapshot) { got = append(got, s) })
	return got, err
}

func TestLoad_FreshCacheSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	f.seed(t, time.Hour)

	got, err := f.load(t)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SourceCache, got[0].Source)
	assert.False(t, got[0].Stale)
	assert.Equal(t, cached, got[0].Materials)
	assert.Equal(t, 0, f.fetcher.calls)
}

func TestLoad_StaleCacheThenNetwork(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.MaterialsTTL)

	got, err := f.load(t)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, SourceCache, got[0].Source)
	assert.True(t, got[0].Stale)
	assert.Equal(t, SourceNetwork, got[1].Source)
	assert.Equal(t, remote, got[1].Materials)

	entry, err := store.ReadCache[[]model.Material](context.Background(), f.cache, store.KeyMaterialsCache)
	require.NoError(t, err)
	assert.Equal(t, remote, entry.Payload)
	assert.True(t, entry.FetchedAt.Equal(epoch))
}

func TestLoad_NoCache(t *testing.T) {
	f := newFixture(t)

	got, err := f.load(t)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SourceNetwork, got[0].Source)
	assert.Equal(t, 1, f.fetcher.calls)
}

func TestLoad_NetworkFailureKeepsCache(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 48*time.Hour)
	f.fetcher.err = errors.New("offline")

	got, err := f.load(t)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Stale)

	entry, err := store.ReadCache[[]model.Material](context.Background(), f.cache, store.KeyMaterialsCache)
	require.NoError(t, err)
	assert.Equal(t, cached, entry.Payload)
}

func TestLoad_NetworkFailureWithoutCache(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errors.New("offline")

	got, err := f.load(t)
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestLoad_EmptyListNotCached(t *testing.T) {
	f := newFixture(t)
	f.fetcher.materials = []model.Material{}

	got, err := f.load(t)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Materials)

	_, err = store.ReadCache[[]model.Material](context.Background(), f.cache, store.KeyMaterialsCache)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoad_CorruptCacheIsMiss(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cache.Save(context.Background(), store.KeyMaterialsCache, []byte("{oops"), epoch))

	got, err := f.load(t)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SourceNetwork, got[0].Source)
}

func TestRefresh_IgnoresFreshCache(t *testing.T) {
	f := newFixture(t)
	f.seed(t, time.Minute)

	var got []Snapshot
	require.NoError(t, f.loader.Refresh(context.Background(), func(s Snapshot) { got = append(got, s) }))
	require.Len(t, got, 1)
	assert.Equal(t, SourceNetwork, got[0].Source)
	assert.Equal(t, 1, f.fetcher.calls)
}

func TestLoad_LateReportsDiscarded(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 48*time.Hour)

	var screen generation.Counter
	var shown []Snapshot
	report := generation.Guard(screen.Token(), func(s Snapshot) { shown = append(shown, s) })

	err := f.loader.Load(context.Background(), func(s Snapshot) {
		report(s)
		if s.Source == SourceCache {
			// The screen goes away before the network answer arrives.
			screen.Invalidate()
		}
	})
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, SourceCache, shown[0].Source)
}

func TestFind(t *testing.T) {
	f := newFixture(t)
	f.seed(t, time.Hour)
	ctx := context.Background()

	m, err := f.loader.Find(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Greetings", m.Title)
	assert.Equal(t, 0, f.fetcher.calls)

	m, err = f.loader.Find(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "Travel", m.Title)
	assert.Equal(t, 1, f.fetcher.calls)

	require.NoError(t, f.loader.Invalidate(ctx))
	_, err = store.ReadCache[[]model.Material](ctx, f.cache, store.KeyMaterialsCache)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroupByLevel(t *testing.T) {
	materials := []model.Material{
		{ID: "1", Level: "Advanced"},
		{ID: "2", Level: "custom"},
		{ID: "3", Level: "beginner"},
		{ID: "4"},
		{ID: "5", Level: "Beginner"},
		{ID: "6", Level: "custom"},
	}

	groups := GroupByLevel(materials)
	var levels []string
	for _, g := range groups {
		levels = append(levels, g.Level)
	}
	assert.Equal(t, []string{"Beginner", "Advanced", "custom", "Other"}, levels)
	assert.Equal(t, []string{"3", "5"}, ids(groups[0].Materials))
	assert.Equal(t, []string{"2", "6"}, ids(groups[2].Materials))
	assert.Equal(t, Other, groups[3].Category)
	assert.Empty(t, GroupByLevel(nil))
}

func ids(ms []model.Material) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestCategory(t *testing.T) {
	tests := []struct {
		level string
		want  Category
		icon  string
	}{
		{"Beginner", Beginner, "🌱"},
		{" INTERMEDIATE ", Intermediate, "⚡"},
		{"advanced", Advanced, "🔥"},
		{"expert", Other, "📚"},
		{"", Other, "📚"},
	}
	for _, tt := range tests {
		got := CategoryOf(tt.level)
		assert.Equal(t, tt.want, got, tt.level)
		assert.Equal(t, tt.icon, got.Icon(), tt.level)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Material{
		{Level: "Beginner", Items: []model.PracticeItem{{Text: "a"}, {Text: "b"}}},
		{Level: "Beginner", Text: "c"},
		{Level: "x"},
	})
	assert.Equal(t, 3, s.Materials)
	assert.Equal(t, 3, s.Items)
	assert.Equal(t, 2, s.ByCategory[Beginner])
	assert.Equal(t, 1, s.ByCategory[Other])
}
