// Package push sends multicast notifications through Firebase Cloud
// Messaging and prunes device tokens the transport reports as permanently
// invalid.
package push

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"gorm.io/gorm"
)

var (
	// ErrForbidden means the verified caller is not the event's actor.
	ErrForbidden = errors.New("caller is not the event actor")
	// ErrUpstream means the push transport rejected the whole multicast.
	ErrUpstream = errors.New("push transport unavailable")
)

// Messenger is the slice of the FCM client the dispatcher needs.
type Messenger interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Request describes one notification to deliver.
type Request struct {
	Type         models.EventType `json:"type" validate:"required"`
	ActorUID     string           `json:"actor_uid" validate:"required"`
	ActorName    string           `json:"actor_name" validate:"required"`
	RecipientUID string           `json:"recipient_uid" validate:"required"`
	DreamID      string           `json:"dream_id,omitempty"`
	DreamTitle   string           `json:"dream_title,omitempty"`
	Symbol       string           `json:"symbol,omitempty"`
}

// Result reports the outcome of one dispatch.
type Result struct {
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
	Pruned       int    `json:"pruned"`
	Skipped      string `json:"skipped,omitempty"` // self-target, no-tokens, opted-out
}

// Dispatcher resolves the recipient, filters tokens and preferences, sends
// one multicast, and prunes dead tokens best-effort.
type Dispatcher struct {
	users     repositories.UserRepository
	tokens    repositories.DeviceTokenRepository
	messenger Messenger

	// permanentTokenError classifies per-token send failures; swapped in
	// tests since FCM error values cannot be fabricated.
	permanentTokenError func(error) bool
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(users repositories.UserRepository, tokens repositories.DeviceTokenRepository, messenger Messenger) *Dispatcher {
	return &Dispatcher{
		users:               users,
		tokens:              tokens,
		messenger:           messenger,
		permanentTokenError: messaging.IsUnregistered,
	}
}

// Dispatch authorizes callerUID against the request and runs the delivery
// pipeline. Authentication (verifying the caller's credential into
// callerUID) happens upstream in middleware.
func (d *Dispatcher) Dispatch(ctx context.Context, callerUID string, req Request) (*Result, error) {
	if !models.KnownEventType(req.Type) {
		return nil, fmt.Errorf("%w: unknown event type %q", repositories.ErrInvalidInput, req.Type)
	}
	if callerUID == "" || callerUID != req.ActorUID {
		return nil, ErrForbidden
	}
	if req.RecipientUID == req.ActorUID {
		return &Result{Skipped: "self-target"}, nil
	}

	recipient, err := d.users.GetUserByFirebaseUID(req.RecipientUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	tokens, err := d.tokens.GetTokensByUserID(recipient.ID)
	if err != nil {
		return nil, err
	}
	tokens = filterTokens(tokens)
	if len(tokens) == 0 {
		return &Result{Skipped: "no-tokens"}, nil
	}

	if optedOut(recipient, req.Type) {
		return &Result{Skipped: "opted-out"}, nil
	}

	title, body, err := buildAlert(req)
	if err != nil {
		return nil, err
	}

	message := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data: map[string]string{
			"type":      string(req.Type),
			"actor_uid": req.ActorUID,
			"dream_id":  req.DreamID,
		},
		Android: &messaging.AndroidConfig{
			TTL: durationPtr(24 * time.Hour),
			// Collapse retries of the same logical event into one tray entry.
			CollapseKey: string(req.Type) + ":" + req.DreamID,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-collapse-id": string(req.Type) + ":" + req.DreamID},
		},
	}

	resp, err := d.messenger.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result := &Result{SuccessCount: resp.SuccessCount, FailureCount: resp.FailureCount}

	var dead []string
	for i, r := range resp.Responses {
		if r.Error != nil && i < len(tokens) && d.permanentTokenError(r.Error) {
			dead = append(dead, tokens[i])
		}
	}
	if len(dead) > 0 {
		// Best effort: a pruning failure never fails the dispatch.
		pruned, pruneErr := d.tokens.RemoveTokens(recipient.ID, dead)
		if pruneErr != nil {
			log.Printf("Failed to prune %d invalid device tokens for user %d: %v", len(dead), recipient.ID, pruneErr)
		} else {
			result.Pruned = int(pruned)
		}
	}

	return result, nil
}

// filterTokens deduplicates, drops blanks, and caps the list at the
// multicast limit. Order is preserved (the repository returns newest first).
func filterTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == models.MaxDeviceTokens {
			break
		}
	}
	return out
}

// optedOut applies the recipient's global and per-category preferences
func optedOut(user *models.User, eventType models.EventType) bool {
	if !user.NotificationsEnabled {
		return true
	}
	switch eventType {
	case models.EventReaction, models.EventCommentReaction:
		return !user.ReactionNotificationsEnabled
	case models.EventComment, models.EventReply:
		return !user.CommentNotificationsEnabled
	case models.EventMention:
		return !user.MentionNotificationsEnabled
	}
	return false
}

// buildAlert renders the human-readable title/body for the event
func buildAlert(req Request) (title, body string, err error) {
	if req.ActorName == "" {
		return "", "", fmt.Errorf("%w: missing actor name", repositories.ErrInvalidInput)
	}
	switch req.Type {
	case models.EventReaction:
		if req.Symbol == "" {
			return "", "", fmt.Errorf("%w: reaction event without symbol", repositories.ErrInvalidInput)
		}
		return fmt.Sprintf("%s reacted to your dream", req.ActorName),
			fmt.Sprintf("%s %s", req.Symbol, req.DreamTitle), nil
	case models.EventCommentReaction:
		return fmt.Sprintf("%s liked your comment", req.ActorName), req.DreamTitle, nil
	case models.EventComment:
		return fmt.Sprintf("%s commented on your dream", req.ActorName), req.DreamTitle, nil
	case models.EventReply:
		return fmt.Sprintf("%s replied to your comment", req.ActorName), req.DreamTitle, nil
	case models.EventMention:
		return fmt.Sprintf("%s mentioned you in a dream", req.ActorName), req.DreamTitle, nil
	}
	return "", "", fmt.Errorf("%w: no alert template for %q", repositories.ErrInvalidInput, req.Type)
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
