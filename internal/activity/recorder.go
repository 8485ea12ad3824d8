// Package activity turns reaction/comment events into durable inbox entries
// for the affected user.
package activity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// ErrUnsupportedType is returned for event types outside the allow-list.
var ErrUnsupportedType = errors.New("unsupported event type")

// Event is the payload fanned out to a recipient's inbox. DreamTitle is a
// snapshot captured by the caller at event time.
type Event struct {
	Type       models.EventType
	ActorUID   string
	ActorName  string
	DreamID    string
	DreamTitle string
	Symbol     string // reaction events
	CommentID  uint   // comment-reaction events
}

// Recorder writes inbox entries. now is swappable for tests.
type Recorder struct {
	inbox repositories.InboxRepository
	now   func() time.Time
}

// NewRecorder creates a Recorder backed by the given inbox repository
func NewRecorder(inbox repositories.InboxRepository) *Recorder {
	return &Recorder{inbox: inbox, now: time.Now}
}

// RecordEvent writes one inbox entry for recipientUID. Self-events (actor ==
// recipient) are suppressed and return (nil, nil). A retried event landing in
// the same hourly dedupe bucket is treated as already delivered and returns
// the stored entry without error.
func (r *Recorder) RecordEvent(ctx context.Context, recipientUID string, event Event) (*models.InboxEntry, error) {
	if !models.KnownEventType(event.Type) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, event.Type)
	}
	if recipientUID == "" || event.ActorUID == "" {
		return nil, repositories.ErrInvalidInput
	}
	if recipientUID == event.ActorUID {
		return nil, nil
	}

	entry := &models.InboxEntry{
		Type:         event.Type,
		ActorUID:     event.ActorUID,
		ActorName:    event.ActorName,
		RecipientUID: recipientUID,
		DreamID:      event.DreamID,
		DreamTitle:   event.DreamTitle,
		Symbol:       event.Symbol,
		CommentID:    event.CommentID,
		DedupeKey:    dedupeKey(recipientUID, event, r.now()),
		IsRead:       false,
		CreatedAt:    r.now(),
	}

	if err := r.inbox.CreateEntry(entry); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Same logical event already delivered within this bucket.
			if existing, lookupErr := r.inbox.GetEntryByDedupeKey(entry.DedupeKey); lookupErr == nil {
				return existing, nil
			}
			return entry, nil
		}
		return nil, fmt.Errorf("writing inbox entry: %w", err)
	}
	return entry, nil
}

// dedupeKey identifies one logical event within an hourly bucket, so a
// client retry after a transient failure cannot double-deliver.
func dedupeKey(recipientUID string, event Event, at time.Time) string {
	bucket := at.UTC().Truncate(time.Hour).Unix()
	raw := fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		event.ActorUID, recipientUID, event.Type, event.DreamID, event.CommentID, bucket)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
