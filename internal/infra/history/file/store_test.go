package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/chartsight/internal/domain/analysis"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func record(id string, createdAt int64) *analysis.Analysis {
	trend := "Bullish"
	return &analysis.Analysis{
		ID:               analysis.ID(id),
		Trend:            &trend,
		DetailedAnalysis: []analysis.Section{},
		CreatedAt:        createdAt,
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	symbol := "BTC/USD"
	gamePlan := "Wait for the retrace."
	a := record("1736078400000-aaaa1111", 1736078400000)
	a.Symbol = &symbol
	a.GamePlan = &gamePlan
	a.DetailedAnalysis = []analysis.Section{
		{Title: "Daily Bias", Description: "Bullish structure."},
		{Title: "Order / Breaker Block", Description: "Block at 42k."},
		{Title: "Fair Value Gap", Description: "Gap 41.2k-41.6k."},
		{Title: "Economic Data", Description: "CPI on 10-Jan."},
		{Title: "Moon Phase", Description: "Full moon 13-Jan."},
	}

	require.NoError(t, s.Save(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got, "record survives storage unchanged")

	// The stored copy is independent of the caller's value.
	*a.Symbol = "mutated"
	again, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "BTC/USD", *again.Symbol)
}

func TestGetUnknownID(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, analysis.ErrNotFound)
}

func TestDuplicateIDRejected(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, record("dup-1", 100)))
	err := s.Save(ctx, record("dup-1", 200))
	assert.ErrorIs(t, err, analysis.ErrDuplicateID)

	list, err := s.History(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "rejected write leaves no trace")
}

func TestHistoryOrderedByRecency(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	// Saved out of createdAt order on purpose.
	require.NoError(t, s.Save(ctx, record("mid", 200)))
	require.NoError(t, s.Save(ctx, record("newest", 300)))
	require.NoError(t, s.Save(ctx, record("oldest", 100)))

	list, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, analysis.ID("newest"), list[0].ID)
	assert.Equal(t, analysis.ID("mid"), list[1].ID)
	assert.Equal(t, analysis.ID("oldest"), list[2].ID)
}

func TestHistoryTiesBrokenByID(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, record("100-aa", 100)))
	require.NoError(t, s.Save(ctx, record("100-zz", 100)))

	list, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, analysis.ID("100-zz"), list[0].ID)
}

func TestReopenFromDisk(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	a := record("persist-1", 500)
	a.DetailedAnalysis = []analysis.Section{
		{Title: "Daily Bias", Description: "one"},
		{Title: "Order / Breaker Block", Description: "two"},
		{Title: "Fair Value Gap", Description: "three"},
		{Title: "Economic Data", Description: "four"},
		{Title: "Moon Phase", Description: "five"},
	}
	require.NoError(t, s.Save(ctx, a))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "persist-1")
	require.NoError(t, err)
	assert.Equal(t, a.DetailedAnalysis, got.DetailedAnalysis, "section order survives a restart")
}

func TestConcurrentSaves(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Save(ctx, record(fmt.Sprintf("c-%02d", i), int64(1000+i)))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "save %d", i)
	}
	list, err := s.History(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n, "no record lost under concurrency")
}

func TestClear(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, record("gone-1", 1)))
	require.NoError(t, s.Save(ctx, record("gone-2", 2)))
	require.NoError(t, s.Clear(ctx))

	list, err := s.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Clearing is durable.
	reopened, err := Open(path)
	require.NoError(t, err)
	list, err = reopened.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.json")
	s, err := Open(path)
	require.NoError(t, err)
	list, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	// Parent directories were created, so the first save lands.
	require.NoError(t, s.Save(context.Background(), record("first", time.Now().UnixMilli())))
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	s, _ := newStore(t)
	err := s.Save(context.Background(), &analysis.Analysis{CreatedAt: 1})
	assert.Error(t, err)
}
