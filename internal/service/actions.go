package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

const persistTimeout = 15 * time.Second

// ActionReconciler owns the local interaction state: ratings, watch
// statuses and the rating count driving onboarding progress. Every
// action mutates local state synchronously and persists in the
// background; a persistence failure is reported on the returned
// channel but the local mutation stays.
type ActionReconciler struct {
	repo     domain.RecommenderRepository
	sessions *SessionManager
	logger   *slog.Logger

	// watched and watchlist are independent sets: marking a watched
	// movie plan-to-watch must not erase the watched mark
	mu         sync.RWMutex
	ratings    map[int64]int
	watched    map[int64]bool
	watchlist  map[int64]bool
	ratedCount int
}

// NewActionReconciler creates a new action reconciler
func NewActionReconciler(repo domain.RecommenderRepository, sessions *SessionManager, logger *slog.Logger) *ActionReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ActionReconciler{
		repo:      repo,
		sessions:  sessions,
		logger:    logger,
		ratings:   make(map[int64]int),
		watched:   make(map[int64]bool),
		watchlist: make(map[int64]bool),
	}
	sessions.Subscribe(func(change SessionChange) {
		switch change.Event {
		case domain.EventSignedIn:
			r.seed(change.Session)
		case domain.EventSignedOut:
			r.Clear()
		}
	})
	return r
}

// seed initializes the local rating count from server-side stats so
// progress tracking continues across restarts. Best effort: a failed
// fetch leaves the count at zero and the gate re-resolves from stats
// anyway.
func (r *ActionReconciler) seed(session *domain.Session) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		stats, err := r.repo.GetUserStats(ctx, session.UserID)
		if err != nil {
			r.logger.Debug("failed to seed rating count", "error", err)
			return
		}

		r.mu.Lock()
		if stats.RatedCount > r.ratedCount {
			r.ratedCount = stats.RatedCount
		}
		r.mu.Unlock()
	}()
}

// Rate records a rating locally and persists it in the background.
// Each invocation bumps the rated count by one; re-rating a movie
// overwrites the stored value, never removes it.
func (r *ActionReconciler) Rate(movieID int64, rating int) (<-chan error, error) {
	session := r.sessions.Current()
	if session == nil {
		return nil, domain.ErrAuthRequired
	}
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	r.mu.Lock()
	r.ratings[movieID] = rating
	r.ratedCount++
	count := r.ratedCount
	r.mu.Unlock()

	r.logger.Debug("rated movie", "movieID", movieID, "rating", rating, "ratedCount", count)

	return r.persist(func(ctx context.Context) error {
		return r.repo.RateMovie(ctx, session.UserID, movieID, rating)
	}), nil
}

// MarkWatch adds a movie to the watched or plan-to-watch set and
// persists the mark in the background. The sets are independent, so a
// movie can be in both.
func (r *ActionReconciler) MarkWatch(movieID int64, status domain.WatchStatus) (<-chan error, error) {
	session := r.sessions.Current()
	if session == nil {
		return nil, domain.ErrAuthRequired
	}

	r.mu.Lock()
	switch status {
	case domain.StatusWatched:
		r.watched[movieID] = true
	case domain.StatusPlanToWatch:
		r.watchlist[movieID] = true
	}
	r.mu.Unlock()

	r.logger.Debug("marked watch status", "movieID", movieID, "status", string(status))

	return r.persist(func(ctx context.Context) error {
		return r.repo.SetWatchStatus(ctx, session.UserID, movieID, status)
	}), nil
}

// SaveGenres persists the onboarding genre selection in the background
func (r *ActionReconciler) SaveGenres(genres []string) (<-chan error, error) {
	session := r.sessions.Current()
	if session == nil {
		return nil, domain.ErrAuthRequired
	}

	return r.persist(func(ctx context.Context) error {
		return r.repo.SaveGenrePreferences(ctx, session.UserID, genres)
	}), nil
}

// persist runs fn against a fresh timeout context and delivers its
// error on a buffered channel the caller may consume or drop
func (r *ActionReconciler) persist(fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		err := fn(ctx)
		if err != nil {
			r.logger.Warn("failed to persist action", "error", err)
		}
		done <- err
	}()
	return done
}

// Rating returns the locally recorded rating for a movie
func (r *ActionReconciler) Rating(movieID int64) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rating, ok := r.ratings[movieID]
	return rating, ok
}

// Watched reports whether a movie is in the local watched set
func (r *ActionReconciler) Watched(movieID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watched[movieID]
}

// OnWatchlist reports whether a movie is in the local plan-to-watch set
func (r *ActionReconciler) OnWatchlist(movieID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watchlist[movieID]
}

// WatchedIDs returns the watched set in ascending id order
func (r *ActionReconciler) WatchedIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.watched)
}

// WatchlistIDs returns the plan-to-watch set in ascending id order
func (r *ActionReconciler) WatchlistIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.watchlist)
}

// RatedIDs returns the locally rated movie ids in ascending order
func (r *ActionReconciler) RatedIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.ratings))
	for id := range r.ratings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RemoveMark drops a movie from the watched or plan-to-watch set.
// Local only: the backend exposes no removal endpoint.
func (r *ActionReconciler) RemoveMark(movieID int64, status domain.WatchStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch status {
	case domain.StatusWatched:
		delete(r.watched, movieID)
	case domain.StatusPlanToWatch:
		delete(r.watchlist, movieID)
	}
}

// RemoveRating drops a movie's local rating. The rated count is left
// alone: it only ever counts up.
func (r *ActionReconciler) RemoveRating(movieID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ratings, movieID)
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RatedCount returns the local rating count
func (r *ActionReconciler) RatedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ratedCount
}

// Clear wipes all local interaction state
func (r *ActionReconciler) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ratings = make(map[int64]int)
	r.watched = make(map[int64]bool)
	r.watchlist = make(map[int64]bool)
	r.ratedCount = 0
}
