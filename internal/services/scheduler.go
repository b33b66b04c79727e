package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/cache"
)

// SyncScheduler retries deferred answer syncs in the background. A write
// that failed to reach the record store (connectivity, rate limit) stays
// flagged unsynced in the cache; every tick the scheduler pushes those
// sessions again.
type SyncScheduler struct {
	log      *zap.Logger
	progress *cache.Progress
	syncer   *cache.Syncer
	interval time.Duration
	done     chan struct{}
}

// NewSyncScheduler creates a scheduler over the given cache.
func NewSyncScheduler(log *zap.Logger, progress *cache.Progress, syncer *cache.Syncer, interval time.Duration) *SyncScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SyncScheduler{
		log:      log,
		progress: progress,
		syncer:   syncer,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs the scheduler in a goroutine.
func (s *SyncScheduler) Start() {
	s.log.Info("Starting answer sync scheduler", zap.Duration("interval", s.interval))
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSyncPass()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the retry loop. A pass already in flight finishes.
func (s *SyncScheduler) Stop() {
	close(s.done)
}

func (s *SyncScheduler) runSyncPass() {
	sessions, err := s.progress.UnsyncedSessions()
	if err != nil {
		s.log.Error("Failed to list unsynced sessions", zap.Error(err))
		return
	}
	if len(sessions) == 0 {
		return
	}
	s.log.Debug("Retrying deferred answer syncs", zap.Int("sessions", len(sessions)))

	for _, sessionID := range sessions {
		responseID, ok := s.progress.ResponseID(sessionID)
		if !ok {
			// Answers cached before a response record existed; nothing
			// durable to push into yet.
			continue
		}
		if err := s.syncer.Sync(context.Background(), sessionID, responseID); err != nil {
			// Already logged by the syncer; keep going with the rest.
			continue
		}
	}
}
