package cache

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// AnswersKey is the cache key the in-progress questionId -> answerId map
// lives under, one value per session.
const AnswersKey = "assessment_answers"

// ResponseIDKey stores which durable assessment response the session's
// answers belong to, so the background sync can find it.
const ResponseIDKey = "response_id"

// KVStore is the device-local key-value store behind the progress cache.
// It is injected rather than accessed globally so tests can substitute an
// in-memory implementation.
type KVStore interface {
	// Get returns the stored value, whether it has been synced since its
	// last write, and whether it exists at all.
	Get(sessionID, key string) (value string, synced bool, ok bool, err error)
	// Set writes a value and marks it unsynced.
	Set(sessionID, key, value string) error
	// MarkSynced records that the current value reached the durable store.
	MarkSynced(sessionID, key string) error
	// UnsyncedSessions lists sessions whose answer map has local writes
	// that have not reached the durable store.
	UnsyncedSessions() ([]string, error)
	// Clear drops everything held for one session.
	Clear(sessionID string) error
}

// Entry is one cached value.
type Entry struct {
	SessionID string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	Synced    bool
	UpdatedAt time.Time
}

// GormKV is the SQLite-backed KVStore used in production.
type GormKV struct {
	db *gorm.DB
}

// NewGormKV wraps an opened cache database.
func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (s *GormKV) Get(sessionID, key string) (string, bool, bool, error) {
	var entry Entry
	err := s.db.First(&entry, "session_id = ? AND key = ?", sessionID, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, err
	}
	return entry.Value, entry.Synced, true, nil
}

func (s *GormKV) Set(sessionID, key, value string) error {
	entry := Entry{
		SessionID: sessionID,
		Key:       key,
		Value:     value,
		Synced:    false,
		UpdatedAt: time.Now(),
	}
	return s.db.Save(&entry).Error
}

func (s *GormKV) MarkSynced(sessionID, key string) error {
	return s.db.Model(&Entry{}).
		Where("session_id = ? AND key = ?", sessionID, key).
		Update("synced", true).Error
}

func (s *GormKV) UnsyncedSessions() ([]string, error) {
	var sessions []string
	err := s.db.Model(&Entry{}).
		Where("key = ? AND synced = ?", AnswersKey, false).
		Pluck("session_id", &sessions).Error
	return sessions, err
}

func (s *GormKV) Clear(sessionID string) error {
	return s.db.Delete(&Entry{}, "session_id = ?", sessionID).Error
}
