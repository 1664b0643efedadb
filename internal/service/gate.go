package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

// Phase is the gate's position in the onboarding flow
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseOnboardingGenres
	PhaseOnboardingRatings
	PhaseHome
)

func (p Phase) String() string {
	switch p {
	case PhaseOnboardingGenres:
		return "onboarding-genres"
	case PhaseOnboardingRatings:
		return "onboarding-ratings"
	case PhaseHome:
		return "home"
	default:
		return "unknown"
	}
}

// ProgressGate decides which phase a signed-in user lands in. The
// decision is memoized per user ID so repeated resolution neither
// re-fetches stats nor flaps an already-granted home phase back to
// onboarding.
type ProgressGate struct {
	repo      domain.RecommenderRepository
	threshold int
	logger    *slog.Logger

	mu             sync.Mutex
	phases         map[string]Phase
	genresRecorded map[string]bool
}

// NewProgressGate creates a new progress gate. threshold is the rating
// count at which onboarding completes.
func NewProgressGate(repo domain.RecommenderRepository, threshold int, logger *slog.Logger) *ProgressGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressGate{
		repo:           repo,
		threshold:      threshold,
		logger:         logger,
		phases:         make(map[string]Phase),
		genresRecorded: make(map[string]bool),
	}
}

// Threshold returns the rating count required to reach home
func (g *ProgressGate) Threshold() int {
	return g.threshold
}

// ResolvePhase returns the phase for a session, fetching user stats at
// most once per user. A stats fetch failure is returned as an error so
// the caller can retry explicitly; nothing is memoized in that case.
func (g *ProgressGate) ResolvePhase(ctx context.Context, session *domain.Session) (Phase, error) {
	if session == nil {
		return PhaseUnknown, domain.ErrAuthRequired
	}

	g.mu.Lock()
	if phase, ok := g.phases[session.UserID]; ok {
		g.mu.Unlock()
		return phase, nil
	}
	g.mu.Unlock()

	stats, err := g.repo.GetUserStats(ctx, session.UserID)
	if err != nil {
		g.logger.Warn("failed to resolve phase", "user", session.UserID, "error", err)
		return PhaseUnknown, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// A concurrent resolve may have won the race
	if phase, ok := g.phases[session.UserID]; ok {
		return phase, nil
	}

	var phase Phase
	switch {
	case stats.RatedCount >= g.threshold:
		phase = PhaseHome
	case stats.RatedCount > 0 || g.genresRecorded[session.UserID]:
		// A rating history means the genre step already ran
		phase = PhaseOnboardingRatings
	default:
		phase = PhaseOnboardingGenres
	}

	g.phases[session.UserID] = phase
	g.logger.Info("resolved phase", "user", session.UserID, "phase", phase.String(), "ratedCount", stats.RatedCount)
	return phase, nil
}

// OnboardingMovies fetches the rating candidates for the onboarding
// step, biased toward the selected genres
func (g *ProgressGate) OnboardingMovies(ctx context.Context, userID string, genres []string) ([]domain.MovieSummary, error) {
	movies, err := g.repo.GetOnboardingMovies(ctx, userID, genres)
	if err != nil {
		g.logger.Error("failed to get onboarding movies", "error", err, "user", userID)
		return nil, err
	}
	return movies, nil
}

// GenresSubmitted advances a user past the genre step
func (g *ProgressGate) GenresSubmitted(userID string) Phase {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.genresRecorded[userID] = true
	if g.phases[userID] == PhaseHome {
		return PhaseHome
	}
	g.phases[userID] = PhaseOnboardingRatings
	return PhaseOnboardingRatings
}

// NoteProgress feeds the local rating count back into the gate and
// advances to home once it reaches the threshold. Home is sticky: a
// later lower count never demotes the phase.
func (g *ProgressGate) NoteProgress(userID string, ratedCount int) Phase {
	g.mu.Lock()
	defer g.mu.Unlock()

	phase, ok := g.phases[userID]
	if !ok {
		phase = PhaseOnboardingRatings
	}
	if phase == PhaseHome {
		return PhaseHome
	}
	if ratedCount >= g.threshold {
		g.phases[userID] = PhaseHome
		g.logger.Info("onboarding complete", "user", userID, "ratedCount", ratedCount)
		return PhaseHome
	}
	g.phases[userID] = phase
	return phase
}

// Reset forgets all memoized phases, used on sign-out
func (g *ProgressGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.phases = make(map[string]Phase)
	g.genresRecorded = make(map[string]bool)
}
