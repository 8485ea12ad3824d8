package push

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// -------- test fakes --------

type fakeUserRepo struct {
	repositories.UserRepository
	user *models.User
	err  error
}

func (f *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeTokenRepo struct {
	repositories.DeviceTokenRepository
	tokens   []string
	removed  []string
	pruneErr error
}

func (f *fakeTokenRepo) GetTokensByUserID(userID uint) ([]string, error) {
	return f.tokens, nil
}

func (f *fakeTokenRepo) RemoveTokens(userID uint, tokens []string) (int64, error) {
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	f.removed = append(f.removed, tokens...)
	return int64(len(tokens)), nil
}

type fakeMessenger struct {
	sent     []*messaging.MulticastMessage
	response *messaging.BatchResponse
	err      error
}

func (f *fakeMessenger) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

var errUnregistered = errors.New("registration-token-not-registered")

func enabledUser() *models.User {
	return &models.User{
		ID:                           7,
		Name:                         "Recipient",
		NotificationsEnabled:         true,
		ReactionNotificationsEnabled: true,
		CommentNotificationsEnabled:  true,
		MentionNotificationsEnabled:  true,
	}
}

func newDispatcher(users *fakeUserRepo, tokens *fakeTokenRepo, m *fakeMessenger) *Dispatcher {
	d := NewDispatcher(users, tokens, m)
	d.permanentTokenError = func(err error) bool { return errors.Is(err, errUnregistered) }
	return d
}

func reactionRequest() Request {
	return Request{
		Type:         models.EventReaction,
		ActorUID:     "actor",
		ActorName:    "Alice",
		RecipientUID: "recipient",
		DreamID:      "dream-1",
		DreamTitle:   "Falling upward",
		Symbol:       "🔥",
	}
}

func TestDispatchSendsMulticast(t *testing.T) {
	tokens := &fakeTokenRepo{tokens: []string{"t1", "t2"}}
	m := &fakeMessenger{response: &messaging.BatchResponse{
		SuccessCount: 2,
		Responses:    []*messaging.SendResponse{{Success: true}, {Success: true}},
	}}
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, tokens, m)

	res, err := d.Dispatch(context.Background(), "actor", reactionRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Zero(t, res.Pruned)
	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"t1", "t2"}, m.sent[0].Tokens)
	assert.Equal(t, "Alice reacted to your dream", m.sent[0].Notification.Title)
	assert.Equal(t, "🔥 Falling upward", m.sent[0].Notification.Body)
	assert.Equal(t, "reaction", m.sent[0].Data["type"])
}

func TestDispatchForbidsActorMismatch(t *testing.T) {
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, &fakeTokenRepo{}, &fakeMessenger{})

	_, err := d.Dispatch(context.Background(), "impostor", reactionRequest())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDispatchSkipsSelfTarget(t *testing.T) {
	m := &fakeMessenger{}
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, &fakeTokenRepo{}, m)

	req := reactionRequest()
	req.RecipientUID = "actor"
	res, err := d.Dispatch(context.Background(), "actor", req)

	require.NoError(t, err)
	assert.Equal(t, "self-target", res.Skipped)
	assert.Empty(t, m.sent)
}

func TestDispatchRecipientNotFound(t *testing.T) {
	d := newDispatcher(&fakeUserRepo{err: gorm.ErrRecordNotFound}, &fakeTokenRepo{}, &fakeMessenger{})

	_, err := d.Dispatch(context.Background(), "actor", reactionRequest())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDispatchSkipsWithoutTokens(t *testing.T) {
	m := &fakeMessenger{}
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, &fakeTokenRepo{tokens: []string{"", ""}}, m)

	res, err := d.Dispatch(context.Background(), "actor", reactionRequest())

	require.NoError(t, err)
	assert.Equal(t, "no-tokens", res.Skipped)
	assert.Empty(t, m.sent)
}

func TestDispatchSkipsOptedOutTarget(t *testing.T) {
	user := enabledUser()
	user.NotificationsEnabled = false
	m := &fakeMessenger{}
	d := newDispatcher(&fakeUserRepo{user: user}, &fakeTokenRepo{tokens: []string{"t1"}}, m)

	res, err := d.Dispatch(context.Background(), "actor", reactionRequest())

	require.NoError(t, err)
	assert.Equal(t, "opted-out", res.Skipped)
	assert.Empty(t, m.sent, "opt-out must issue zero transport calls")
}

func TestDispatchSkipsCategoryOptOut(t *testing.T) {
	user := enabledUser()
	user.ReactionNotificationsEnabled = false
	m := &fakeMessenger{}
	d := newDispatcher(&fakeUserRepo{user: user}, &fakeTokenRepo{tokens: []string{"t1"}}, m)

	res, err := d.Dispatch(context.Background(), "actor", reactionRequest())

	require.NoError(t, err)
	assert.Equal(t, "opted-out", res.Skipped)
}

func TestDispatchPrunesUnregisteredTokens(t *testing.T) {
	tokens := &fakeTokenRepo{tokens: []string{"alive", "dead"}}
	m := &fakeMessenger{response: &messaging.BatchResponse{
		SuccessCount: 1,
		FailureCount: 1,
		Responses: []*messaging.SendResponse{
			{Success: true},
			{Success: false, Error: errUnregistered},
		},
	}}
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, tokens, m)

	res, err := d.Dispatch(context.Background(), "actor", reactionRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	assert.Equal(t, 1, res.Pruned)
	assert.Equal(t, []string{"dead"}, tokens.removed)
}

func TestDispatchPruneFailureIsSwallowed(t *testing.T) {
	tokens := &fakeTokenRepo{tokens: []string{"dead"}, pruneErr: assert.AnError}
	m := &fakeMessenger{response: &messaging.BatchResponse{
		FailureCount: 1,
		Responses:    []*messaging.SendResponse{{Success: false, Error: errUnregistered}},
	}}
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, tokens, m)

	res, err := d.Dispatch(context.Background(), "actor", reactionRequest())

	require.NoError(t, err, "pruning failure must not fail the dispatch")
	assert.Zero(t, res.Pruned)
}

func TestDispatchTransportFailure(t *testing.T) {
	m := &fakeMessenger{err: assert.AnError}
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, &fakeTokenRepo{tokens: []string{"t1"}}, m)

	_, err := d.Dispatch(context.Background(), "actor", reactionRequest())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestDispatchRejectsUnknownEventType(t *testing.T) {
	d := newDispatcher(&fakeUserRepo{user: enabledUser()}, &fakeTokenRepo{}, &fakeMessenger{})

	req := reactionRequest()
	req.Type = "poke"
	_, err := d.Dispatch(context.Background(), "actor", req)
	assert.ErrorIs(t, err, repositories.ErrInvalidInput)
}

func TestFilterTokens(t *testing.T) {
	in := []string{"a", "", "b", "a", "c"}
	assert.Equal(t, []string{"a", "b", "c"}, filterTokens(in))

	many := make([]string, models.MaxDeviceTokens+50)
	for i := range many {
		many[i] = string(rune('a')) + string(rune(i))
	}
	assert.LessOrEqual(t, len(filterTokens(many)), models.MaxDeviceTokens)
}
