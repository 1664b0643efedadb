package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/log"
)

func TestHealthMonitor(t *testing.T) {
	var pingErr error
	repo := &stubRepo{
		PingFn: func(ctx context.Context) error { return pingErr },
	}
	h := NewHealthMonitor(repo, log.NullLogger())

	// Optimistic before the first check
	assert.True(t, h.Online())

	assert.True(t, h.Check(context.Background()))
	assert.True(t, h.Online())

	pingErr = domain.ErrBackendUnreachable
	assert.False(t, h.Check(context.Background()))
	assert.False(t, h.Online())

	pingErr = nil
	assert.True(t, h.Check(context.Background()))
	assert.True(t, h.Online())
}
