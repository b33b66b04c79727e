package cache

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Progress holds each session's in-progress answer map in the device-local
// store so the user can move back and forth through the questions, and a
// reload picks up where they left off.
type Progress struct {
	kv  KVStore
	log *zap.Logger
}

// NewProgress creates a Progress over the given store.
func NewProgress(kv KVStore, log *zap.Logger) *Progress {
	return &Progress{kv: kv, log: log}
}

// Answers returns the persisted questionId -> answerId map for a session,
// or an empty map when nothing has been answered yet. An unparseable cache
// value is discarded; the cache is a re-derivable shadow, never the truth.
func (p *Progress) Answers(sessionID string) (map[string]string, error) {
	raw, _, ok, err := p.kv.Get(sessionID, AnswersKey)
	if err != nil {
		return nil, fmt.Errorf("read answer cache: %w", err)
	}
	if !ok {
		return map[string]string{}, nil
	}

	var answers map[string]string
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		p.log.Warn("Discarding corrupt answer cache entry",
			zap.String("sessionID", sessionID),
			zap.Error(err),
		)
		return map[string]string{}, nil
	}
	return answers, nil
}

// SetAnswer records one answer selection. The stored map is replaced with
// a fresh copy holding the new entry, then persisted immediately.
func (p *Progress) SetAnswer(sessionID, questionID, answerID string) (map[string]string, error) {
	current, err := p.Answers(sessionID)
	if err != nil {
		return nil, err
	}

	next := make(map[string]string, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[questionID] = answerID

	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode answer cache: %w", err)
	}
	if err := p.kv.Set(sessionID, AnswersKey, string(raw)); err != nil {
		return nil, fmt.Errorf("write answer cache: %w", err)
	}
	return next, nil
}

// Synced reports whether the session's current map has reached the durable
// store since its last write. A session with no answers counts as synced.
func (p *Progress) Synced(sessionID string) (bool, error) {
	_, synced, ok, err := p.kv.Get(sessionID, AnswersKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return synced, nil
}

// BindResponse remembers which durable response the session writes into.
func (p *Progress) BindResponse(sessionID, responseID string) error {
	return p.kv.Set(sessionID, ResponseIDKey, responseID)
}

// ResponseID looks up the durable response bound to the session.
func (p *Progress) ResponseID(sessionID string) (string, bool) {
	id, _, ok, err := p.kv.Get(sessionID, ResponseIDKey)
	if err != nil || id == "" {
		return "", false
	}
	return id, ok
}

// UnsyncedSessions lists sessions with local answer writes that have not
// reached the durable store yet.
func (p *Progress) UnsyncedSessions() ([]string, error) {
	return p.kv.UnsyncedSessions()
}

// Clear drops the session's cached answers, typically after completion.
func (p *Progress) Clear(sessionID string) error {
	return p.kv.Clear(sessionID)
}
