package activity

import (
	"context"
	"testing"
	"time"

	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeInboxRepo struct {
	repositories.InboxRepository
	created   []*models.InboxEntry
	createErr error
}

func (f *fakeInboxRepo) CreateEntry(entry *models.InboxEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.created {
		if e.DedupeKey == entry.DedupeKey {
			return repositories.ErrConflict
		}
	}
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeInboxRepo) GetEntryByDedupeKey(key string) (*models.InboxEntry, error) {
	for _, e := range f.created {
		if e.DedupeKey == key {
			return e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func newRecorder(repo *fakeInboxRepo) *Recorder {
	r := NewRecorder(repo)
	r.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }
	return r
}

func reactionEvent() Event {
	return Event{
		Type:       models.EventReaction,
		ActorUID:   "actor",
		ActorName:  "Alice",
		DreamID:    "dream-1",
		DreamTitle: "Falling upward",
		Symbol:     "🔥",
	}
}

func TestRecordEventWritesEntry(t *testing.T) {
	repo := &fakeInboxRepo{}
	entry, err := newRecorder(repo).RecordEvent(context.Background(), "recipient", reactionEvent())

	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.EventReaction, entry.Type)
	assert.Equal(t, "recipient", entry.RecipientUID)
	assert.Equal(t, "Falling upward", entry.DreamTitle)
	assert.False(t, entry.IsRead)
	assert.NotEmpty(t, entry.DedupeKey)
	assert.Len(t, repo.created, 1)
}

func TestRecordEventSuppressesSelfEvents(t *testing.T) {
	repo := &fakeInboxRepo{}
	event := reactionEvent()
	event.ActorUID = "same-user"

	entry, err := newRecorder(repo).RecordEvent(context.Background(), "same-user", event)

	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Empty(t, repo.created, "self-event must write nothing")
}

func TestRecordEventRejectsUnknownType(t *testing.T) {
	event := reactionEvent()
	event.Type = "poke"

	_, err := newRecorder(&fakeInboxRepo{}).RecordEvent(context.Background(), "recipient", event)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRecordEventDeduplicatesRetries(t *testing.T) {
	repo := &fakeInboxRepo{}
	rec := newRecorder(repo)

	first, err := rec.RecordEvent(context.Background(), "recipient", reactionEvent())
	require.NoError(t, err)

	second, err := rec.RecordEvent(context.Background(), "recipient", reactionEvent())
	require.NoError(t, err)

	assert.Equal(t, first.DedupeKey, second.DedupeKey)
	assert.Len(t, repo.created, 1, "retry within the bucket must not double-deliver")
}

func TestRecordEventDistinctActorsAreNotDeduplicated(t *testing.T) {
	repo := &fakeInboxRepo{}
	rec := newRecorder(repo)

	_, err := rec.RecordEvent(context.Background(), "recipient", reactionEvent())
	require.NoError(t, err)

	other := reactionEvent()
	other.ActorUID = "someone-else"
	_, err = rec.RecordEvent(context.Background(), "recipient", other)
	require.NoError(t, err)

	assert.Len(t, repo.created, 2)
}

func TestRecordEventSurfacesStorageError(t *testing.T) {
	repo := &fakeInboxRepo{createErr: assert.AnError}
	_, err := newRecorder(repo).RecordEvent(context.Background(), "recipient", reactionEvent())
	assert.ErrorIs(t, err, assert.AnError)
}
