package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/log"
)

func TestGetUserStatsCached(t *testing.T) {
	repo := &stubRepo{
		GetUserStatsFn: func(ctx context.Context, userID string) (*domain.UserStats, error) {
			return &domain.UserStats{RatedCount: 7, Persona: "Crime Connoisseur"}, nil
		},
	}
	s := NewProfileService(repo, nil, log.NullLogger())

	for i := 0; i < 3; i++ {
		stats, err := s.GetUserStats(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 7, stats.RatedCount)
	}

	assert.Equal(t, 1, repo.callCount("GetUserStats"))
}

func TestSubmitReviewInvalidatesStats(t *testing.T) {
	repo := &stubRepo{}
	s := NewProfileService(repo, nil, log.NullLogger())

	_, err := s.GetUserStats(context.Background(), "u1")
	require.NoError(t, err)

	err = s.SubmitReview(context.Background(), domain.Review{
		UserID:  "u1",
		MovieID: 42,
		Rating:  5,
		Text:    "great",
	})
	require.NoError(t, err)

	_, err = s.GetUserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount("GetUserStats"))
}

func TestReviewsNotCached(t *testing.T) {
	repo := &stubRepo{}
	s := NewProfileService(repo, nil, log.NullLogger())

	_, err := s.GetReviews(context.Background(), 42)
	require.NoError(t, err)
	_, err = s.GetReviews(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.callCount("GetReviews"))
}

func TestWipeUserDataClearsCache(t *testing.T) {
	repo := &stubRepo{}
	s := NewProfileService(repo, nil, log.NullLogger())

	_, err := s.GetTasteProfile(context.Background(), "u1")
	require.NoError(t, err)
	_, err = s.GetMovie(context.Background(), 42)
	require.NoError(t, err)

	require.NoError(t, s.WipeUserData(context.Background(), "u1"))

	_, err = s.GetTasteProfile(context.Background(), "u1")
	require.NoError(t, err)
	_, err = s.GetMovie(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.callCount("GetTasteProfile"))
	assert.Equal(t, 2, repo.callCount("GetMovie"))
}

func TestSignOutClearsProfileCache(t *testing.T) {
	repo := &stubRepo{}
	sessions := NewSessionManager(&stubIdentity{}, log.NullLogger())
	s := NewProfileService(repo, sessions, log.NullLogger())

	_, err := sessions.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	_, err = s.GetUserStats(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, sessions.SignOut(context.Background()))

	_, err = s.GetUserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount("GetUserStats"))
}
