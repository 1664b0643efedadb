package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/service"
)

// Command factories for async operations

// RestoreSessionCmd resolves a previously persisted session at startup
func RestoreSessionCmd(sessions *service.SessionManager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		session, err := sessions.Restore(ctx)
		if err != nil {
			// Unreachable auth service at startup is not fatal; land on sign-in
			return SessionRestoredMsg{Session: nil}
		}
		return SessionRestoredMsg{Session: session}
	}
}

// SignInCmd authenticates with the identity provider
func SignInCmd(sessions *service.SessionManager, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		session, err := sessions.SignIn(ctx, email, password)
		if err != nil {
			return AuthFailedMsg{Err: err}
		}
		return SignedInMsg{Session: session}
	}
}

// SignUpCmd registers a new account
func SignUpCmd(sessions *service.SessionManager, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		session, err := sessions.SignUp(ctx, email, password)
		if err != nil {
			return AuthFailedMsg{Err: err}
		}
		return SignedInMsg{Session: session}
	}
}

// SignOutCmd ends the active session
func SignOutCmd(sessions *service.SessionManager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := sessions.SignOut(ctx); err != nil {
			return ErrMsg{Err: err, Context: "signing out"}
		}
		return SignedOutMsg{}
	}
}

// ResolvePhaseCmd asks the gate where the session lands
func ResolvePhaseCmd(gate *service.ProgressGate, session *domain.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		phase, err := gate.ResolvePhase(ctx, session)
		if err != nil {
			return PhaseResolveFailedMsg{Err: err}
		}
		return PhaseResolvedMsg{Phase: phase}
	}
}

// LoadOnboardingMoviesCmd fetches rating candidates for onboarding
func LoadOnboardingMoviesCmd(gate *service.ProgressGate, userID string, genres []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		movies, err := gate.OnboardingMovies(ctx, userID, genres)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading onboarding movies"}
		}
		return OnboardingMoviesMsg{Movies: movies}
	}
}

// LoadFeedCmd runs one home feed load
func LoadFeedCmd(feeds *service.FeedAggregator, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		return FeedLoadedMsg{Feed: feeds.LoadHome(ctx, userID)}
	}
}

// SearchCmd queries the catalog
func SearchCmd(search *service.SearchService, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results, err := search.Search(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching"}
		}
		return SearchResultsMsg{Results: results, Query: query}
	}
}

// ResolvePosterCmd looks up a poster URL, joining any in-flight request
// for the same title
func ResolvePosterCmd(posters *service.PosterService, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		url, err := posters.Lookup(ctx, title)
		if err != nil {
			// Lookup failures are silent; the placeholder stays
			return nil
		}
		return PosterResolvedMsg{Title: title, URL: url}
	}
}

// AwaitPersistCmd turns a persistence future into a message
func AwaitPersistCmd(action string, movieID int64, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return ActionPersistedMsg{Action: action, MovieID: movieID, Err: <-done}
	}
}

// SaveGenresCmd persists the genre picks and reports locally right away
func SaveGenresCmd(actions *service.ActionReconciler, genres []string) tea.Cmd {
	return func() tea.Msg {
		done, err := actions.SaveGenres(genres)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving genres"}
		}
		// The selection advances the flow immediately; persistence is
		// reported separately
		go func() { <-done }()
		return GenresSavedMsg{Genres: genres}
	}
}

// LoadProfileCmd fetches stats and taste profile together
func LoadProfileCmd(profiles *service.ProfileService, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stats, err := profiles.GetUserStats(ctx, userID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading profile"}
		}

		taste, err := profiles.GetTasteProfile(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return ErrMsg{Err: err, Context: "loading taste profile"}
		}

		return StatsLoadedMsg{Stats: stats, Taste: taste}
	}
}

// LoadLibraryCmd assembles the library tabs from the local interaction
// state, resolving ids to titles through the cached movie lookup
func LoadLibraryCmd(profiles *service.ProfileService, actions *service.ActionReconciler) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		entries := func(ids []int64) []LibraryEntry {
			out := make([]LibraryEntry, 0, len(ids))
			for _, id := range ids {
				entry := LibraryEntry{Movie: domain.MovieSummary{ID: id}}
				if detail, err := profiles.GetMovie(ctx, id); err == nil {
					entry.Movie = detail.MovieSummary
				}
				if rating, ok := actions.Rating(id); ok {
					entry.Rating = rating
				}
				out = append(out, entry)
			}
			return out
		}

		return LibraryLoadedMsg{
			Watchlist: entries(actions.WatchlistIDs()),
			Watched:   entries(actions.WatchedIDs()),
			Rated:     entries(actions.RatedIDs()),
		}
	}
}

// LoadMovieDetailCmd fetches a movie's detail and reviews together
func LoadMovieDetailCmd(profiles *service.ProfileService, movieID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		detail, err := profiles.GetMovie(ctx, movieID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading movie"}
		}

		reviews, err := profiles.GetReviews(ctx, movieID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return ErrMsg{Err: err, Context: "loading reviews"}
		}

		return MovieDetailMsg{Detail: detail, Reviews: reviews}
	}
}

// SubmitReviewCmd posts a review
func SubmitReviewCmd(profiles *service.ProfileService, review domain.Review) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := profiles.SubmitReview(ctx, review); err != nil {
			return ErrMsg{Err: err, Context: "submitting review"}
		}
		return ReviewSubmittedMsg{MovieID: review.MovieID}
	}
}

// WipeUserDataCmd deletes all server-side activity for the user
func WipeUserDataCmd(profiles *service.ProfileService, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := profiles.WipeUserData(ctx, userID); err != nil {
			return ErrMsg{Err: err, Context: "deleting account data"}
		}
		return DataWipedMsg{}
	}
}

// CheckHealthCmd runs one liveness check
func CheckHealthCmd(health *service.HealthMonitor) tea.Cmd {
	return func() tea.Msg {
		return HealthCheckedMsg{Online: health.Check(context.Background())}
	}
}

// HealthTickCmd schedules the next liveness check
func HealthTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return HealthTickMsg{}
	})
}
