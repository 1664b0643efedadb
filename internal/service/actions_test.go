package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/log"
)

func signedInReconciler(t *testing.T, repo *stubRepo) *ActionReconciler {
	t.Helper()
	sessions := NewSessionManager(&stubIdentity{}, log.NullLogger())
	r := NewActionReconciler(repo, sessions, log.NullLogger())
	_, err := sessions.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	return r
}

func waitPersist(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("persistence never completed")
		return nil
	}
}

func TestRateAppliesLocallyBeforePersistence(t *testing.T) {
	release := make(chan struct{})
	repo := &stubRepo{
		RateMovieFn: func(ctx context.Context, userID string, movieID int64, rating int) error {
			<-release
			return nil
		},
	}
	r := signedInReconciler(t, repo)

	done, err := r.Rate(42, 5)
	require.NoError(t, err)

	// Local state reflects the action while persistence is in flight
	rating, ok := r.Rating(42)
	assert.True(t, ok)
	assert.Equal(t, 5, rating)
	assert.Equal(t, 1, r.RatedCount())

	close(release)
	require.NoError(t, waitPersist(t, done))
}

func TestRatePersistenceFailureNotRolledBack(t *testing.T) {
	repo := &stubRepo{
		RateMovieFn: func(ctx context.Context, userID string, movieID int64, rating int) error {
			return errors.New("write failed")
		},
	}
	r := signedInReconciler(t, repo)

	done, err := r.Rate(42, 4)
	require.NoError(t, err)
	require.Error(t, waitPersist(t, done))

	// The optimistic mutation survives the failed write
	rating, ok := r.Rating(42)
	assert.True(t, ok)
	assert.Equal(t, 4, rating)
	assert.Equal(t, 1, r.RatedCount())
}

func TestRateIncrementsCountPerInvocation(t *testing.T) {
	r := signedInReconciler(t, &stubRepo{})

	for i, rating := range []int{3, 5, 2} {
		done, err := r.Rate(42, rating)
		require.NoError(t, err)
		require.NoError(t, waitPersist(t, done))
		assert.Equal(t, i+1, r.RatedCount())
	}

	// Re-rating overwrites, never removes
	rating, ok := r.Rating(42)
	assert.True(t, ok)
	assert.Equal(t, 2, rating)
}

func TestRateValidation(t *testing.T) {
	r := signedInReconciler(t, &stubRepo{})

	for _, rating := range []int{0, -1, 6} {
		_, err := r.Rate(42, rating)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}
	assert.Equal(t, 0, r.RatedCount())
}

func TestActionsRequireSession(t *testing.T) {
	sessions := NewSessionManager(&stubIdentity{}, log.NullLogger())
	r := NewActionReconciler(&stubRepo{}, sessions, log.NullLogger())

	_, err := r.Rate(42, 5)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = r.MarkWatch(42, domain.StatusWatched)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = r.SaveGenres([]string{"Crime"})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestMarkWatch(t *testing.T) {
	r := signedInReconciler(t, &stubRepo{})

	done, err := r.MarkWatch(42, domain.StatusPlanToWatch)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))

	assert.True(t, r.OnWatchlist(42))
	assert.False(t, r.Watched(42))

	done, err = r.MarkWatch(42, domain.StatusWatched)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))

	// The sets are independent: a later watched mark does not erase
	// the plan-to-watch mark, and vice versa
	assert.True(t, r.Watched(42))
	assert.True(t, r.OnWatchlist(42))
}

func TestWatchedSurvivesPlanToWatch(t *testing.T) {
	r := signedInReconciler(t, &stubRepo{})

	done, err := r.MarkWatch(42, domain.StatusWatched)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))

	done, err = r.MarkWatch(42, domain.StatusPlanToWatch)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))

	assert.True(t, r.Watched(42))
	assert.True(t, r.OnWatchlist(42))
}

func TestLibraryAccessorsAndRemoval(t *testing.T) {
	r := signedInReconciler(t, &stubRepo{})

	for _, id := range []int64{7, 3} {
		done, err := r.MarkWatch(id, domain.StatusWatched)
		require.NoError(t, err)
		require.NoError(t, waitPersist(t, done))
	}
	done, err := r.MarkWatch(5, domain.StatusPlanToWatch)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))
	done, err = r.Rate(9, 4)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))

	assert.Equal(t, []int64{3, 7}, r.WatchedIDs())
	assert.Equal(t, []int64{5}, r.WatchlistIDs())
	assert.Equal(t, []int64{9}, r.RatedIDs())

	r.RemoveMark(7, domain.StatusWatched)
	assert.Equal(t, []int64{3}, r.WatchedIDs())
	assert.Equal(t, []int64{5}, r.WatchlistIDs(), "removal targets one set only")

	r.RemoveRating(9)
	_, ok := r.Rating(9)
	assert.False(t, ok)
	assert.Equal(t, 1, r.RatedCount(), "rated count never decreases")
}

func TestSignOutClearsInteractionState(t *testing.T) {
	sessions := NewSessionManager(&stubIdentity{}, log.NullLogger())
	r := NewActionReconciler(&stubRepo{}, sessions, log.NullLogger())
	_, err := sessions.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	done, err := r.Rate(42, 5)
	require.NoError(t, err)
	require.NoError(t, waitPersist(t, done))

	require.NoError(t, sessions.SignOut(context.Background()))

	_, ok := r.Rating(42)
	assert.False(t, ok)
	assert.Equal(t, 0, r.RatedCount())
}
