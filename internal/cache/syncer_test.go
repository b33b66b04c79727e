package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResponseSyncer struct {
	err   error
	calls []map[string]string
}

func (f *fakeResponseSyncer) SyncAnswers(ctx context.Context, responseID string, answers map[string]string) error {
	f.calls = append(f.calls, answers)
	return f.err
}

func TestSyncerMarksSynced(t *testing.T) {
	kv := newMemKV()
	progress := NewProgress(kv, zap.NewNop())
	store := &fakeResponseSyncer{}
	syncer := NewSyncer(progress, store, zap.NewNop())

	_, err := progress.SetAnswer("sid", "q1", "a1")
	require.NoError(t, err)

	require.NoError(t, syncer.Sync(context.Background(), "sid", "rec_r1"))
	require.Len(t, store.calls, 1)
	assert.Equal(t, map[string]string{"q1": "a1"}, store.calls[0])

	synced, err := progress.Synced("sid")
	require.NoError(t, err)
	assert.True(t, synced)
}

func TestSyncerFailureLeavesUnsynced(t *testing.T) {
	kv := newMemKV()
	progress := NewProgress(kv, zap.NewNop())
	store := &fakeResponseSyncer{err: errors.New("store down")}
	syncer := NewSyncer(progress, store, zap.NewNop())

	_, err := progress.SetAnswer("sid", "q1", "a1")
	require.NoError(t, err)

	assert.Error(t, syncer.Sync(context.Background(), "sid", "rec_r1"))

	synced, err := progress.Synced("sid")
	require.NoError(t, err)
	assert.False(t, synced)

	sessions, err := progress.UnsyncedSessions()
	require.NoError(t, err)
	assert.Equal(t, []string{"sid"}, sessions)

	// Once the store recovers, a retry drains the backlog.
	store.err = nil
	require.NoError(t, syncer.Sync(context.Background(), "sid", "rec_r1"))
	sessions, err = progress.UnsyncedSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSyncerEmptyMapIsNoop(t *testing.T) {
	progress := NewProgress(newMemKV(), zap.NewNop())
	store := &fakeResponseSyncer{}
	syncer := NewSyncer(progress, store, zap.NewNop())

	require.NoError(t, syncer.Sync(context.Background(), "sid", "rec_r1"))
	assert.Empty(t, store.calls)
}
