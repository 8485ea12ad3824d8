package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls which viewers may see a dream.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityPublic    Visibility = "public"
	VisibilityFollowing Visibility = "following"
	VisibilityFollowers Visibility = "followers"
	VisibilityAnonymous Visibility = "anonymous"
)

// Valid reports whether v is one of the known visibility levels
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityPublic, VisibilityFollowing,
		VisibilityFollowers, VisibilityAnonymous:
		return true
	}
	return false
}

// Dream represents a dream entry stored in MongoDB
type Dream struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID  string             `json:"user_id,omitempty" bson:"user_id"` // Firebase UID of the author
	Title   string             `json:"title,omitempty" bson:"title,omitempty"`
	Content string             `json:"content" bson:"content"`

	Visibility        Visibility `json:"visibility" bson:"visibility"`
	ExcludedViewerIDs []string   `json:"excluded_viewer_ids,omitempty" bson:"excluded_viewer_ids,omitempty"`
	TaggedUserIDs     []string   `json:"tagged_user_ids,omitempty" bson:"tagged_user_ids,omitempty"`

	// Reaction state. Reactions maps viewer UID -> symbol (one symbol per
	// viewer); ReactionCounts maps symbol -> count and mirrors Reactions at
	// all times. Both are mutated only through DreamRepository.SetReaction.
	Reactions      map[string]string `json:"reactions,omitempty" bson:"reactions,omitempty"`
	ReactionCounts map[string]int    `json:"reaction_counts,omitempty" bson:"reaction_counts,omitempty"`

	// Rev is bumped on every reaction transaction and guards the
	// compare-and-swap write.
	Rev int64 `json:"-" bson:"rev"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// LastActivity is the feed sort key: the later of creation and update
func (d *Dream) LastActivity() time.Time {
	if d.UpdatedAt.After(d.CreatedAt) {
		return d.UpdatedAt
	}
	return d.CreatedAt
}

// Anonymized returns a copy safe to expose for anonymous-visibility dreams:
// the owner identity and per-viewer reaction map are stripped.
func (d Dream) Anonymized() Dream {
	d.UserID = ""
	d.Reactions = nil
	return d
}

// CreateDreamRequest defines the request body for recording a new dream
type CreateDreamRequest struct {
	Title             string   `json:"title,omitempty" validate:"omitempty,max=120"`
	Content           string   `json:"content" validate:"required,min=1,max=5000"`
	Visibility        string   `json:"visibility" validate:"required,oneof=private public following followers anonymous"`
	ExcludedViewerIDs []string `json:"excluded_viewer_ids,omitempty"`
	TaggedUserIDs     []string `json:"tagged_user_ids,omitempty"`
}

// UpdateDreamRequest defines the request body for updating an existing dream
type UpdateDreamRequest struct {
	Title             string   `json:"title,omitempty" validate:"omitempty,max=120"`
	Content           string   `json:"content,omitempty" validate:"omitempty,min=1,max=5000"`
	Visibility        string   `json:"visibility,omitempty" validate:"omitempty,oneof=private public following followers anonymous"`
	ExcludedViewerIDs []string `json:"excluded_viewer_ids,omitempty"`
	TaggedUserIDs     []string `json:"tagged_user_ids,omitempty"`
}

// SetReactionRequest defines the request body for reacting to a dream.
// An empty symbol clears the caller's reaction.
type SetReactionRequest struct {
	Symbol string `json:"symbol" validate:"omitempty,max=16"`
}
