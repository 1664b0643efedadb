package domain

import "context"

// RecommenderRepository is the backend API surface the services consume.
// All computation (scoring, ranking, persona derivation) happens behind it.
type RecommenderRepository interface {
	// Ping reports backend liveness
	Ping(ctx context.Context) error

	// === Listings ===
	GetPopular(ctx context.Context) ([]MovieSummary, error)
	Search(ctx context.Context, query string) ([]MovieSummary, error)
	GetOnboardingMovies(ctx context.Context, userID string, genres []string) ([]MovieSummary, error)

	// === Recommendation streams ===
	GetRecommendations(ctx context.Context, userID string) ([]RecommendationItem, error)
	GetHiddenGems(ctx context.Context, userID string) ([]RecommendationItem, error)
	GetTimeAware(ctx context.Context) (*TimeAwareFeed, error)

	// === Per-user state ===
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	GetTasteProfile(ctx context.Context, userID string) (*TasteProfile, error)

	// === Detail ===
	GetMovie(ctx context.Context, movieID int64) (*MovieDetail, error)
	GetReviews(ctx context.Context, movieID int64) ([]Review, error)

	// === Mutations ===
	RateMovie(ctx context.Context, userID string, movieID int64, rating int) error
	SetWatchStatus(ctx context.Context, userID string, movieID int64, status WatchStatus) error
	SubmitReview(ctx context.Context, review Review) error
	SaveGenrePreferences(ctx context.Context, userID string, genres []string) error
	WipeUserData(ctx context.Context, userID string) error
}

// PosterRepository resolves a movie title to a cover image URL.
// Returns ("", nil) when no poster exists for the title.
type PosterRepository interface {
	FindPosterURL(ctx context.Context, title string) (string, error)
}

// SessionEvent is delivered by the session subscription
type SessionEvent int

const (
	EventSignedIn SessionEvent = iota
	EventSignedOut
)

// IdentityProvider is the external auth collaborator. Credentials and the
// session protocol are its concern; the client only consumes the session
// object and change notifications.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error

	// CurrentSession resolves a previously established session, if any
	// (reload / back-navigation case). Returns nil without error when
	// no session exists.
	CurrentSession(ctx context.Context) (*Session, error)
}
