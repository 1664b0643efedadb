package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/poster"
	"github.com/itsiBahar/IMRS-V2/internal/store"
)

// PosterService resolves poster URLs with normalized-title memoization
// and in-flight de-duplication: however many callers ask for the same
// title concurrently, the artwork API sees one request. Misses are
// memoized too, so a title known to lack artwork is never re-queried.
type PosterService struct {
	repo   domain.PosterRepository
	store  *store.PosterStore
	logger *slog.Logger

	mu      sync.Mutex
	urls    map[string]string // resolved; "" means known miss
	pending map[string][]chan string
}

// NewPosterService creates a new poster service. store may be nil for
// a purely in-memory cache.
func NewPosterService(repo domain.PosterRepository, posterStore *store.PosterStore, logger *slog.Logger) *PosterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PosterService{
		repo:    repo,
		store:   posterStore,
		logger:  logger,
		urls:    make(map[string]string),
		pending: make(map[string][]chan string),
	}
}

func posterKey(title string) string {
	return strings.ToLower(poster.NormalizeTitle(title))
}

// Resolve returns the cached poster URL for a title without blocking.
// The second return is false while the title is unresolved or a lookup
// is still in flight; a known miss returns ("", true).
func (s *PosterService) Resolve(title string) (string, bool) {
	key := posterKey(title)

	s.mu.Lock()
	defer s.mu.Unlock()

	if url, ok := s.urls[key]; ok {
		return url, true
	}
	if s.store != nil {
		if url, ok := s.store.GetPosterURL(key); ok {
			s.urls[key] = url
			return url, true
		}
	}
	return "", false
}

// Lookup resolves a poster URL, blocking until the shared in-flight
// request for this title completes. Concurrent callers for the same
// normalized title join one request. A catalog miss is remembered
// durably; a transport failure is remembered for the session, so the
// same title is asked of the artwork API at most once per run.
func (s *PosterService) Lookup(ctx context.Context, title string) (string, error) {
	key := posterKey(title)

	s.mu.Lock()
	if url, ok := s.urls[key]; ok {
		s.mu.Unlock()
		return url, nil
	}
	if s.store != nil {
		if url, ok := s.store.GetPosterURL(key); ok {
			s.urls[key] = url
			s.mu.Unlock()
			return url, nil
		}
	}

	if _, inFlight := s.pending[key]; inFlight {
		// Join the in-flight request
		wait := make(chan string, 1)
		s.pending[key] = append(s.pending[key], wait)
		s.mu.Unlock()

		select {
		case url := <-wait:
			return url, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// Become the leader for this title
	s.pending[key] = []chan string{}
	s.mu.Unlock()

	url, err := s.repo.FindPosterURL(ctx, title)

	s.mu.Lock()
	waiters := s.pending[key]
	delete(s.pending, key)
	// A failed request memoizes as a session-scoped miss too: retrying
	// per card would hammer the artwork API for nothing
	s.urls[key] = url
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("poster lookup failed", "title", title, "error", err)
		for _, w := range waiters {
			w <- ""
		}
		return "", err
	}

	if s.store != nil {
		if url == "" {
			s.store.SaveMiss(key)
		} else {
			s.store.SavePosterURL(key, url)
		}
	}

	for _, w := range waiters {
		w <- url
	}
	return url, nil
}

// Clear drops the in-memory cache. The durable store survives: poster
// art is not user-scoped.
func (s *PosterService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = make(map[string]string)
}

// Invalidate drops the in-memory cache and the durable store, used by
// the delete-my-data flow
func (s *PosterService) Invalidate() error {
	s.mu.Lock()
	s.urls = make(map[string]string)
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.InvalidateAll()
}
