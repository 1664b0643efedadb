package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

const pingTimeout = 5 * time.Second

// HealthMonitor tracks backend reachability via a liveness ping so the
// UI can show a connectivity indicator
type HealthMonitor struct {
	repo   domain.RecommenderRepository
	logger *slog.Logger

	mu      sync.RWMutex
	online  bool
	checked bool
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor(repo domain.RecommenderRepository, logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthMonitor{
		repo:   repo,
		logger: logger,
	}
}

// Check pings the backend and records the result
func (h *HealthMonitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := h.repo.Ping(ctx)
	online := err == nil

	h.mu.Lock()
	changed := !h.checked || h.online != online
	h.online = online
	h.checked = true
	h.mu.Unlock()

	if changed {
		if online {
			h.logger.Info("backend reachable")
		} else {
			h.logger.Warn("backend unreachable", "error", err)
		}
	}
	return online
}

// Online returns the last recorded reachability. Defaults to true
// before the first check so the UI does not flash offline on startup.
func (h *HealthMonitor) Online() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.checked {
		return true
	}
	return h.online
}
