package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsiBahar/IMRS-V2/internal/log"
	"github.com/itsiBahar/IMRS-V2/internal/store"
)

// stubPosters implements domain.PosterRepository
type stubPosters struct {
	calls atomic.Int64
	fn    func(ctx context.Context, title string) (string, error)
}

func (s *stubPosters) FindPosterURL(ctx context.Context, title string) (string, error) {
	s.calls.Add(1)
	if s.fn != nil {
		return s.fn(ctx, title)
	}
	return "", nil
}

func memStore(t *testing.T) *store.PosterStore {
	t.Helper()
	ps, err := store.NewPosterStore("")
	require.NoError(t, err)
	return ps
}

func TestLookupMemoizes(t *testing.T) {
	repo := &stubPosters{
		fn: func(ctx context.Context, title string) (string, error) {
			return "https://img.example/heat.jpg", nil
		},
	}
	s := NewPosterService(repo, memStore(t), log.NullLogger())

	for i := 0; i < 3; i++ {
		url, err := s.Lookup(context.Background(), "Heat")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/heat.jpg", url)
	}

	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestLookupNormalizesYearSuffix(t *testing.T) {
	repo := &stubPosters{
		fn: func(ctx context.Context, title string) (string, error) {
			return "https://img.example/heat.jpg", nil
		},
	}
	s := NewPosterService(repo, memStore(t), log.NullLogger())

	_, err := s.Lookup(context.Background(), "Heat (1995)")
	require.NoError(t, err)
	_, err = s.Lookup(context.Background(), "Heat")
	require.NoError(t, err)
	_, err = s.Lookup(context.Background(), "heat")
	require.NoError(t, err)

	assert.Equal(t, int64(1), repo.calls.Load())
}

func TestLookupDeduplicatesConcurrentCallers(t *testing.T) {
	release := make(chan struct{})
	repo := &stubPosters{
		fn: func(ctx context.Context, title string) (string, error) {
			<-release
			return "https://img.example/heat.jpg", nil
		},
	}
	s := NewPosterService(repo, memStore(t), log.NullLogger())

	const callers = 8
	var wg sync.WaitGroup
	urls := make([]string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := s.Lookup(context.Background(), "Heat")
			assert.NoError(t, err)
			urls[i] = url
		}(i)
	}

	// Let the leader's request go in flight before it resolves
	for repo.calls.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), repo.calls.Load())
	for _, url := range urls {
		assert.Equal(t, "https://img.example/heat.jpg", url)
	}
}

func TestLookupRemembersMiss(t *testing.T) {
	repo := &stubPosters{} // always ("", nil)
	s := NewPosterService(repo, memStore(t), log.NullLogger())

	url, err := s.Lookup(context.Background(), "Obscure Title")
	require.NoError(t, err)
	assert.Empty(t, url)

	// The miss is memoized; no second request goes out
	url, err = s.Lookup(context.Background(), "Obscure Title")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Equal(t, int64(1), repo.calls.Load())

	resolved, known := s.Resolve("Obscure Title")
	assert.True(t, known)
	assert.Empty(t, resolved)
}

func TestLookupFailureCachedForSession(t *testing.T) {
	repo := &stubPosters{
		fn: func(ctx context.Context, title string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	s := NewPosterService(repo, memStore(t), log.NullLogger())

	_, err := s.Lookup(context.Background(), "Heat")
	require.Error(t, err)

	// A failed request counts as a miss for the rest of the session:
	// the title is never asked of the backend again
	url, err := s.Lookup(context.Background(), "Heat")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Equal(t, int64(1), repo.calls.Load())

	resolved, known := s.Resolve("Heat")
	assert.True(t, known)
	assert.Empty(t, resolved)
}

func TestLookupFailureNotDurablyRecorded(t *testing.T) {
	repo := &stubPosters{
		fn: func(ctx context.Context, title string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	ps := memStore(t)
	s := NewPosterService(repo, ps, log.NullLogger())

	_, err := s.Lookup(context.Background(), "Heat")
	require.Error(t, err)

	// Clearing the session cache forgets the transient failure; only
	// genuine catalog misses go to the durable store
	s.Clear()
	_, known := ps.GetPosterURL("heat")
	assert.False(t, known)

	_, err = s.Lookup(context.Background(), "Heat")
	require.Error(t, err)
	assert.Equal(t, int64(2), repo.calls.Load())
}

func TestInvalidateDropsDurableStore(t *testing.T) {
	repo := &stubPosters{
		fn: func(ctx context.Context, title string) (string, error) {
			return "https://img.example/heat.jpg", nil
		},
	}
	ps := memStore(t)
	s := NewPosterService(repo, ps, log.NullLogger())

	_, err := s.Lookup(context.Background(), "Heat")
	require.NoError(t, err)

	require.NoError(t, s.Invalidate())

	_, known := ps.GetPosterURL("heat")
	assert.False(t, known)
	_, known = s.Resolve("Heat")
	assert.False(t, known)
}

func TestResolveNonBlocking(t *testing.T) {
	s := NewPosterService(&stubPosters{}, memStore(t), log.NullLogger())

	_, known := s.Resolve("Never Seen")
	assert.False(t, known)
}

func TestWarmStartFromStore(t *testing.T) {
	dir := t.TempDir()

	ps, err := store.NewPosterStore(dir)
	require.NoError(t, err)
	require.NoError(t, ps.SavePosterURL("heat", "https://img.example/heat.jpg"))
	require.NoError(t, ps.Close())

	reopened, err := store.NewPosterStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	repo := &stubPosters{}
	s := NewPosterService(repo, reopened, log.NullLogger())

	url, known := s.Resolve("Heat (1995)")
	assert.True(t, known)
	assert.Equal(t, "https://img.example/heat.jpg", url)
	assert.Equal(t, int64(0), repo.calls.Load())
}
