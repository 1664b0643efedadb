package service

import (
	"context"
	"sync"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// stubRepo implements domain.RecommenderRepository with overridable
// function fields. Unset fields return zero values. Call counts are
// tracked per method name.
type stubRepo struct {
	mu    sync.Mutex
	calls map[string]int

	PingFn                 func(ctx context.Context) error
	GetPopularFn           func(ctx context.Context) ([]domain.MovieSummary, error)
	SearchFn               func(ctx context.Context, query string) ([]domain.MovieSummary, error)
	GetOnboardingMoviesFn  func(ctx context.Context, userID string, genres []string) ([]domain.MovieSummary, error)
	GetRecommendationsFn   func(ctx context.Context, userID string) ([]domain.RecommendationItem, error)
	GetHiddenGemsFn        func(ctx context.Context, userID string) ([]domain.RecommendationItem, error)
	GetTimeAwareFn         func(ctx context.Context) (*domain.TimeAwareFeed, error)
	GetUserStatsFn         func(ctx context.Context, userID string) (*domain.UserStats, error)
	GetTasteProfileFn      func(ctx context.Context, userID string) (*domain.TasteProfile, error)
	GetMovieFn             func(ctx context.Context, movieID int64) (*domain.MovieDetail, error)
	GetReviewsFn           func(ctx context.Context, movieID int64) ([]domain.Review, error)
	RateMovieFn            func(ctx context.Context, userID string, movieID int64, rating int) error
	SetWatchStatusFn       func(ctx context.Context, userID string, movieID int64, status domain.WatchStatus) error
	SubmitReviewFn         func(ctx context.Context, review domain.Review) error
	SaveGenrePreferencesFn func(ctx context.Context, userID string, genres []string) error
	WipeUserDataFn         func(ctx context.Context, userID string) error
}

func (s *stubRepo) record(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
}

func (s *stubRepo) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *stubRepo) Ping(ctx context.Context) error {
	s.record("Ping")
	if s.PingFn != nil {
		return s.PingFn(ctx)
	}
	return nil
}

func (s *stubRepo) GetPopular(ctx context.Context) ([]domain.MovieSummary, error) {
	s.record("GetPopular")
	if s.GetPopularFn != nil {
		return s.GetPopularFn(ctx)
	}
	return nil, nil
}

func (s *stubRepo) Search(ctx context.Context, query string) ([]domain.MovieSummary, error) {
	s.record("Search")
	if s.SearchFn != nil {
		return s.SearchFn(ctx, query)
	}
	return nil, nil
}

func (s *stubRepo) GetOnboardingMovies(ctx context.Context, userID string, genres []string) ([]domain.MovieSummary, error) {
	s.record("GetOnboardingMovies")
	if s.GetOnboardingMoviesFn != nil {
		return s.GetOnboardingMoviesFn(ctx, userID, genres)
	}
	return nil, nil
}

func (s *stubRepo) GetRecommendations(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
	s.record("GetRecommendations")
	if s.GetRecommendationsFn != nil {
		return s.GetRecommendationsFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubRepo) GetHiddenGems(ctx context.Context, userID string) ([]domain.RecommendationItem, error) {
	s.record("GetHiddenGems")
	if s.GetHiddenGemsFn != nil {
		return s.GetHiddenGemsFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubRepo) GetTimeAware(ctx context.Context) (*domain.TimeAwareFeed, error) {
	s.record("GetTimeAware")
	if s.GetTimeAwareFn != nil {
		return s.GetTimeAwareFn(ctx)
	}
	return nil, nil
}

func (s *stubRepo) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	s.record("GetUserStats")
	if s.GetUserStatsFn != nil {
		return s.GetUserStatsFn(ctx, userID)
	}
	return &domain.UserStats{}, nil
}

func (s *stubRepo) GetTasteProfile(ctx context.Context, userID string) (*domain.TasteProfile, error) {
	s.record("GetTasteProfile")
	if s.GetTasteProfileFn != nil {
		return s.GetTasteProfileFn(ctx, userID)
	}
	return &domain.TasteProfile{}, nil
}

func (s *stubRepo) GetMovie(ctx context.Context, movieID int64) (*domain.MovieDetail, error) {
	s.record("GetMovie")
	if s.GetMovieFn != nil {
		return s.GetMovieFn(ctx, movieID)
	}
	return &domain.MovieDetail{}, nil
}

func (s *stubRepo) GetReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	s.record("GetReviews")
	if s.GetReviewsFn != nil {
		return s.GetReviewsFn(ctx, movieID)
	}
	return nil, nil
}

func (s *stubRepo) RateMovie(ctx context.Context, userID string, movieID int64, rating int) error {
	s.record("RateMovie")
	if s.RateMovieFn != nil {
		return s.RateMovieFn(ctx, userID, movieID, rating)
	}
	return nil
}

func (s *stubRepo) SetWatchStatus(ctx context.Context, userID string, movieID int64, status domain.WatchStatus) error {
	s.record("SetWatchStatus")
	if s.SetWatchStatusFn != nil {
		return s.SetWatchStatusFn(ctx, userID, movieID, status)
	}
	return nil
}

func (s *stubRepo) SubmitReview(ctx context.Context, review domain.Review) error {
	s.record("SubmitReview")
	if s.SubmitReviewFn != nil {
		return s.SubmitReviewFn(ctx, review)
	}
	return nil
}

func (s *stubRepo) SaveGenrePreferences(ctx context.Context, userID string, genres []string) error {
	s.record("SaveGenrePreferences")
	if s.SaveGenrePreferencesFn != nil {
		return s.SaveGenrePreferencesFn(ctx, userID, genres)
	}
	return nil
}

func (s *stubRepo) WipeUserData(ctx context.Context, userID string) error {
	s.record("WipeUserData")
	if s.WipeUserDataFn != nil {
		return s.WipeUserDataFn(ctx, userID)
	}
	return nil
}

// stubIdentity implements domain.IdentityProvider for session tests
type stubIdentity struct {
	mu       sync.Mutex
	signOuts int

	SignInFn         func(ctx context.Context, email, password string) (*domain.Session, error)
	SignUpFn         func(ctx context.Context, email, password string) (*domain.Session, error)
	CurrentSessionFn func(ctx context.Context) (*domain.Session, error)
}

func (s *stubIdentity) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if s.SignInFn != nil {
		return s.SignInFn(ctx, email, password)
	}
	return &domain.Session{UserID: "u1", Email: email, AccessToken: "tok"}, nil
}

func (s *stubIdentity) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	if s.SignUpFn != nil {
		return s.SignUpFn(ctx, email, password)
	}
	return &domain.Session{UserID: "u1", Email: email, AccessToken: "tok"}, nil
}

func (s *stubIdentity) SignOut(ctx context.Context, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOuts++
	return nil
}

func (s *stubIdentity) CurrentSession(ctx context.Context) (*domain.Session, error) {
	if s.CurrentSessionFn != nil {
		return s.CurrentSessionFn(ctx)
	}
	return nil, nil
}
