package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// cachedResult stores cached data keyed by request
type cachedResult struct {
	Items interface{}
}

// ProfileService serves user stats, taste profiles, movie details and
// reviews with per-key memory caching. The cache is session-scoped:
// sign-out wipes it.
type ProfileService struct {
	repo   domain.RecommenderRepository
	logger *slog.Logger

	cacheMu sync.RWMutex
	cache   map[string]cachedResult
}

// NewProfileService creates a new profile service
func NewProfileService(repo domain.RecommenderRepository, sessions *SessionManager, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ProfileService{
		repo:   repo,
		logger: logger,
		cache:  make(map[string]cachedResult),
	}
	if sessions != nil {
		sessions.Subscribe(func(change SessionChange) {
			if change.Event == domain.EventSignedOut {
				s.ClearCache()
			}
		})
	}
	return s
}

// GetUserStats returns the user's rating count and persona
func (s *ProfileService) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	cacheKey := "stats:" + userID

	if cached, ok := s.getFromCache(cacheKey); ok {
		s.logger.Debug("cache hit", "key", cacheKey)
		return cached.(*domain.UserStats), nil
	}

	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user stats", "error", err, "user", userID)
		return nil, err
	}

	s.setCache(cacheKey, stats)
	return stats, nil
}

// GetTasteProfile returns the user's per-genre affinity breakdown
func (s *ProfileService) GetTasteProfile(ctx context.Context, userID string) (*domain.TasteProfile, error) {
	cacheKey := "taste:" + userID

	if cached, ok := s.getFromCache(cacheKey); ok {
		s.logger.Debug("cache hit", "key", cacheKey)
		return cached.(*domain.TasteProfile), nil
	}

	profile, err := s.repo.GetTasteProfile(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get taste profile", "error", err, "user", userID)
		return nil, err
	}

	s.setCache(cacheKey, profile)
	return profile, nil
}

// GetMovie returns a movie's detail view with its similar titles
func (s *ProfileService) GetMovie(ctx context.Context, movieID int64) (*domain.MovieDetail, error) {
	cacheKey := "movie:" + strconv.FormatInt(movieID, 10)

	if cached, ok := s.getFromCache(cacheKey); ok {
		s.logger.Debug("cache hit", "key", cacheKey)
		return cached.(*domain.MovieDetail), nil
	}

	detail, err := s.repo.GetMovie(ctx, movieID)
	if err != nil {
		s.logger.Error("failed to get movie", "error", err, "movieID", movieID)
		return nil, err
	}

	s.setCache(cacheKey, detail)
	return detail, nil
}

// GetReviews returns the reviews for a movie. Not cached: a submitted
// review must show up on the next read.
func (s *ProfileService) GetReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	reviews, err := s.repo.GetReviews(ctx, movieID)
	if err != nil {
		s.logger.Error("failed to get reviews", "error", err, "movieID", movieID)
		return nil, err
	}
	return reviews, nil
}

// SubmitReview posts a review and invalidates the author's stats
func (s *ProfileService) SubmitReview(ctx context.Context, review domain.Review) error {
	if err := s.repo.SubmitReview(ctx, review); err != nil {
		s.logger.Error("failed to submit review", "error", err, "movieID", review.MovieID)
		return err
	}

	s.invalidate("stats:" + review.UserID)
	return nil
}

// WipeUserData deletes every trace of the user's activity server-side
// and drops all cached views of it
func (s *ProfileService) WipeUserData(ctx context.Context, userID string) error {
	if err := s.repo.WipeUserData(ctx, userID); err != nil {
		s.logger.Error("failed to wipe user data", "error", err, "user", userID)
		return err
	}

	s.ClearCache()
	s.logger.Info("wiped user data", "user", userID)
	return nil
}

// ClearCache drops all cached data
func (s *ProfileService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache = make(map[string]cachedResult)
}

func (s *ProfileService) getFromCache(key string) (interface{}, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	cached, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	return cached.Items, true
}

func (s *ProfileService) setCache(key string, items interface{}) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[key] = cachedResult{Items: items}
}

func (s *ProfileService) invalidate(key string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.cache, key)
}
