package cache

import (
	"context"

	"go.uber.org/zap"
)

// responseSyncer is the single store operation the syncer needs.
type responseSyncer interface {
	SyncAnswers(ctx context.Context, responseID string, answers map[string]string) error
}

// Syncer pushes a session's accumulated answer map into its durable
// assessment response. Sync is best-effort: a failure leaves the map
// flagged unsynced and never blocks further local answer collection, and
// re-sending an already-synced map is a no-op at the data level.
type Syncer struct {
	progress *Progress
	store    responseSyncer
	log      *zap.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(progress *Progress, store responseSyncer, log *zap.Logger) *Syncer {
	return &Syncer{progress: progress, store: store, log: log}
}

// Sync pushes the session's current map to the response record. Safe to
// call redundantly and from the retry loop.
func (s *Syncer) Sync(ctx context.Context, sessionID, responseID string) error {
	answers, err := s.progress.Answers(sessionID)
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		return nil
	}

	if err := s.store.SyncAnswers(ctx, responseID, answers); err != nil {
		s.log.Warn("Answer sync failed, will retry",
			zap.String("sessionID", sessionID),
			zap.String("responseID", responseID),
			zap.Error(err),
		)
		return err
	}

	if err := s.progress.kv.MarkSynced(sessionID, AnswersKey); err != nil {
		s.log.Warn("Failed to flag answers as synced", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return nil
}
