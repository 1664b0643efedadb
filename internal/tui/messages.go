package tui

import (
	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SessionRestoredMsg signals the startup session resolution finished.
// Session is nil when nothing could be resumed.
type SessionRestoredMsg struct {
	Session *domain.Session
}

// SignedInMsg signals a successful sign-in or sign-up
type SignedInMsg struct {
	Session *domain.Session
}

// AuthFailedMsg signals rejected credentials
type AuthFailedMsg struct {
	Err error
}

// SignedOutMsg signals the sign-out completed
type SignedOutMsg struct{}

// PhaseResolvedMsg carries the gate decision for the active session
type PhaseResolvedMsg struct {
	Phase service.Phase
}

// PhaseResolveFailedMsg signals the gate could not fetch user stats;
// the user can retry explicitly
type PhaseResolveFailedMsg struct {
	Err error
}

// GenresSavedMsg signals the genre picks were accepted locally
type GenresSavedMsg struct {
	Genres []string
}

// OnboardingMoviesMsg carries the rating candidates for onboarding
type OnboardingMoviesMsg struct {
	Movies []domain.MovieSummary
}

// FeedLoadedMsg carries one home feed load result
type FeedLoadedMsg struct {
	Feed service.HomeFeed
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	Results []domain.MovieSummary
	Query   string
}

// PosterResolvedMsg carries a resolved poster URL for a title
type PosterResolvedMsg struct {
	Title string
	URL   string
}

// ActionPersistedMsg reports the outcome of a background write.
// Err is nil on success; the local state is kept either way.
type ActionPersistedMsg struct {
	Action  string
	MovieID int64
	Err     error
}

// StatsLoadedMsg carries the profile stats view
type StatsLoadedMsg struct {
	Stats *domain.UserStats
	Taste *domain.TasteProfile
}

// MovieDetailMsg carries a movie's detail view with its reviews
type MovieDetailMsg struct {
	Detail  *domain.MovieDetail
	Reviews []domain.Review
}

// LibraryEntry is one row of the library view
type LibraryEntry struct {
	Movie  domain.MovieSummary
	Rating int
}

// LibraryLoadedMsg carries the session-local library, one slice per tab
type LibraryLoadedMsg struct {
	Watchlist []LibraryEntry
	Watched   []LibraryEntry
	Rated     []LibraryEntry
}

// ReviewSubmittedMsg signals a review was accepted by the backend
type ReviewSubmittedMsg struct {
	MovieID int64
}

// DataWipedMsg signals the user's server-side data was deleted
type DataWipedMsg struct{}

// HealthTickMsg schedules the next liveness check
type HealthTickMsg struct{}

// HealthCheckedMsg carries a liveness check result
type HealthCheckedMsg struct {
	Online bool
}
