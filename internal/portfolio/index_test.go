package portfolio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-outreach/internal/types"
)

func staticSource(rows ...types.PortfolioEntry) Source {
	return SourceFunc(func(context.Context) ([]types.PortfolioEntry, error) {
		out := make([]types.PortfolioEntry, len(rows))
		copy(out, rows)
		return out, nil
	})
}

func row(link string, skills ...string) types.PortfolioEntry {
	return types.PortfolioEntry{Skills: skills, Link: link}
}

func loadedIndex(t *testing.T, rows ...types.PortfolioEntry) *Index {
	t.Helper()
	ix := NewIndex(staticSource(rows...))
	require.NoError(t, ix.Load(context.Background()))
	return ix
}

var catalog = []types.PortfolioEntry{
	row("https://example.com/a", "Go", "PostgreSQL"),
	row("https://example.com/b", "React", "TypeScript"),
	row("https://example.com/c", "Go", "Kubernetes", "Docker", "AWS"),
	row("https://example.com/d", "golang", "postgres"),
	row("https://example.com/e", "Python"),
}

func TestQuery_RankingAndTieBreak(t *testing.T) {
	ix := loadedIndex(t, catalog...)

	result, err := ix.Query([]string{"go", "postgres"}, 3)
	require.NoError(t, err)

	// a and d tie at 1.0; a comes first in the catalog
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/d",
		"https://example.com/c",
	}, result.Links)

	require.Len(t, result.Matches, 3)
	assert.InDelta(t, 1.0, result.Matches[0].Score, 1e-9)
	assert.InDelta(t, 1.0, result.Matches[1].Score, 1e-9)
	assert.InDelta(t, 0.2, result.Matches[2].Score, 1e-9)
	assert.Equal(t, []string{"go"}, result.Matches[2].Skills)
}

func TestQuery_BoundedByK(t *testing.T) {
	ix := loadedIndex(t, catalog...)

	for k := 1; k <= 5; k++ {
		result, err := ix.Query([]string{"go"}, k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Links), k)
	}

	result, err := ix.Query([]string{"go"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, result.Links)
}

func TestQuery_ExcludesZeroOverlap(t *testing.T) {
	ix := loadedIndex(t, catalog...)

	result, err := ix.Query([]string{"rust"}, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Links)
	assert.True(t, result.Empty())
}

func TestQuery_EmptySkillsOrK(t *testing.T) {
	ix := loadedIndex(t, catalog...)

	tests := []struct {
		name   string
		skills []string
		k      int
	}{
		{"nil skills", nil, 3},
		{"blank skills", []string{" ", ""}, 3},
		{"zero k", []string{"go"}, 0},
		{"negative k", []string{"go"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ix.Query(tt.skills, tt.k)
			require.NoError(t, err)
			assert.NotNil(t, result.Links)
			assert.Empty(t, result.Links)
		})
	}
}

func TestQuery_NormalizesInput(t *testing.T) {
	ix := loadedIndex(t, catalog...)

	a, err := ix.Query([]string{"Golang", " PostgreSQL "}, 2)
	require.NoError(t, err)
	b, err := ix.Query([]string{"go", "postgres"}, 2)
	require.NoError(t, err)

	assert.Equal(t, b.Links, a.Links)
}

func TestQuery_DuplicateLinksCollapse(t *testing.T) {
	ix := loadedIndex(t,
		row("https://example.com/x", "go"),
		row("https://example.com/y", "go", "grpc"),
		row("https://example.com/x", "go", "grpc"),
	)

	result, err := ix.Query([]string{"go", "grpc"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/y", "https://example.com/x"}, result.Links)
}

func TestQuery_NotLoaded(t *testing.T) {
	ix := NewIndex(staticSource(catalog...))

	_, err := ix.Query([]string{"go"}, 2)
	require.Error(t, err)

	var retrievalErr *RetrievalError
	assert.True(t, errors.As(err, &retrievalErr))
	assert.False(t, ix.Loaded())
}

func TestLoad_Idempotent(t *testing.T) {
	ix := NewIndex(staticSource(catalog...))

	require.NoError(t, ix.Load(context.Background()))
	first, err := ix.Query([]string{"go"}, 5)
	require.NoError(t, err)

	require.NoError(t, ix.Load(context.Background()))
	require.NoError(t, ix.Load(context.Background()))
	second, err := ix.Query([]string{"go"}, 5)
	require.NoError(t, err)

	assert.Equal(t, len(catalog), ix.Len())
	assert.Equal(t, first.Links, second.Links)
}

func TestLoad_SkipsInvalidRows(t *testing.T) {
	ix := loadedIndex(t,
		row("https://example.com/ok", "go"),
		row("not-a-url", "go"),
		row("ftp://example.com/file", "go"),
		row("https://example.com/no-skills"),
		row("https://example.com/blank-skills", " ", ""),
	)

	assert.Equal(t, 1, ix.Len())
}

func TestLoad_FailureKeepsPreviousSnapshot(t *testing.T) {
	var fail atomic.Bool
	ix := NewIndex(SourceFunc(func(context.Context) ([]types.PortfolioEntry, error) {
		if fail.Load() {
			return nil, errors.New("catalog unreachable")
		}
		return []types.PortfolioEntry{row("https://example.com/a", "go")}, nil
	}))

	require.NoError(t, ix.Load(context.Background()))
	loadedAt := ix.LoadedAt()

	fail.Store(true)
	err := ix.Load(context.Background())
	require.Error(t, err)

	var retrievalErr *RetrievalError
	assert.True(t, errors.As(err, &retrievalErr))
	assert.Contains(t, err.Error(), "catalog unreachable")

	result, err := ix.Query([]string{"go"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, result.Links)
	assert.Equal(t, loadedAt, ix.LoadedAt())
}

func TestLoad_LastLoadWins(t *testing.T) {
	var version atomic.Int32
	ix := NewIndex(SourceFunc(func(context.Context) ([]types.PortfolioEntry, error) {
		if version.Load() == 0 {
			return []types.PortfolioEntry{row("https://example.com/old", "go")}, nil
		}
		return []types.PortfolioEntry{row("https://example.com/new", "go")}, nil
	}))

	require.NoError(t, ix.Load(context.Background()))
	version.Store(1)
	require.NoError(t, ix.Load(context.Background()))

	result, err := ix.Query([]string{"go"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/new"}, result.Links)
}

func TestLoad_ConcurrentCallsShareOneRead(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	ix := NewIndex(SourceFunc(func(context.Context) ([]types.PortfolioEntry, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return []types.PortfolioEntry{row("https://example.com/a", "go")}, nil
	}))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- ix.Load(context.Background())
	}()
	<-started

	for i := 0; i < 7; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ix.Load(context.Background())
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, ix.Len())
}

func TestQuery_ConcurrentWithReload(t *testing.T) {
	ix := loadedIndex(t, catalog...)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = ix.Load(context.Background())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				result, err := ix.Query([]string{"go", "postgres"}, 2)
				assert.NoError(t, err)
				assert.Equal(t, []string{"https://example.com/a", "https://example.com/d"}, result.Links)
			}
		}()
	}
	wg.Wait()
}

func TestLoad_NoSource(t *testing.T) {
	err := NewIndex(nil).Load(context.Background())

	var retrievalErr *RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
}

func blockingSource(started chan<- struct{}) Source {
	var once sync.Once
	return SourceFunc(func(ctx context.Context) ([]types.PortfolioEntry, error) {
		if started != nil {
			once.Do(func() { close(started) })
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

func TestLoad_StalledSourceTimesOut(t *testing.T) {
	ix := NewIndex(blockingSource(nil))
	ix.LoadTimeout = 20 * time.Millisecond

	start := time.Now()
	err := ix.Load(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var retrievalErr *RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ix.Loaded())
}

func TestNewIndex_DefaultLoadTimeout(t *testing.T) {
	ix := NewIndex(nil)
	assert.Equal(t, DefaultLoadTimeout, ix.LoadTimeout)

	ix.LoadTimeout = 0
	assert.Equal(t, DefaultLoadTimeout, ix.loadTimeout())
}

func TestLoad_CancelledCallerDoesNotFailJoinedCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	ix := NewIndex(SourceFunc(func(ctx context.Context) ([]types.PortfolioEntry, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return []types.PortfolioEntry{row("https://example.com/a", "go")}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() { errA <- ix.Load(ctxA) }()
	<-started

	errB := make(chan error, 1)
	go func() { errB <- ix.Load(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting for the catalog read")
	}

	close(release)
	select {
	case err := <-errB:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("joined caller never returned")
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, ix.Len())
}
