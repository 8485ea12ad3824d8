package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/reaction"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"github.com/somnia-app/somnia/backend/validators"
	"gorm.io/gorm"
)

// The fakes embed their repository interface so only the methods a test
// actually drives need an implementation; anything else panics loudly.

type fakeDreamRepo struct {
	repositories.DreamRepository
	dreams         map[string]*models.Dream
	setReactionErr error
}

func newFakeDreamRepo(dreams ...*models.Dream) *fakeDreamRepo {
	repo := &fakeDreamRepo{dreams: make(map[string]*models.Dream)}
	for _, d := range dreams {
		repo.dreams[d.ID.Hex()] = d
	}
	return repo
}

func (f *fakeDreamRepo) GetDreamByID(_ context.Context, id string) (*models.Dream, error) {
	dream, ok := f.dreams[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return dream, nil
}

// SetReaction applies the same pure transition the Mongo repository wraps,
// without the revision-guarded retry loop.
func (f *fakeDreamRepo) SetReaction(_ context.Context, dreamID, viewerUID, symbol string) (reaction.Change, error) {
	if f.setReactionErr != nil {
		return reaction.Change{}, f.setReactionErr
	}
	dream, ok := f.dreams[dreamID]
	if !ok {
		return reaction.Change{}, repositories.ErrNotFound
	}

	state := reaction.State{Reactions: dream.Reactions, Counts: dream.ReactionCounts}
	if state.Reactions == nil {
		state.Reactions = map[string]string{}
	}
	if state.Counts == nil {
		state.Counts = map[string]int{}
	}
	next, change := reaction.Apply(state, viewerUID, symbol)
	dream.Reactions = next.Reactions
	dream.ReactionCounts = next.Counts
	return change, nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	byID    map[uint]*models.User
	byUID   map[string]*models.User
	created []*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		byID:  make(map[uint]*models.User),
		byUID: make(map[string]*models.User),
	}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byUID[u.FirebaseUID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	if u, ok := f.byUID[uid]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.created {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	for _, u := range f.created {
		if u.Username == strings.ToLower(username) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	user.ID = uint(len(f.created) + 1)
	f.created = append(f.created, user)
	f.byID[user.ID] = user
	f.byUID[user.FirebaseUID] = user
	return nil
}

type fakeFollowRepo struct {
	repositories.FollowRepository
	graphs map[uint]*models.SocialGraph
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{graphs: make(map[uint]*models.SocialGraph)}
}

func (f *fakeFollowRepo) GetSocialGraph(userID uint) (*models.SocialGraph, error) {
	if g, ok := f.graphs[userID]; ok {
		return g, nil
	}
	return &models.SocialGraph{}, nil
}

type fakeInboxRepo struct {
	repositories.InboxRepository
	entries []*models.InboxEntry
}

func (f *fakeInboxRepo) CreateEntry(entry *models.InboxEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeInboxRepo) GetEntryByDedupeKey(string) (*models.InboxEntry, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeSavedDreamRepo struct {
	repositories.SavedDreamRepository
	saved []*models.SavedDream
}

func (f *fakeSavedDreamRepo) SaveDream(saved *models.SavedDream) error {
	f.saved = append(f.saved, saved)
	return nil
}

type fakeCommentRepo struct {
	repositories.CommentRepository
	byID    map[uint]*models.Comment
	created []*models.Comment
}

func newFakeCommentRepo(comments ...*models.Comment) *fakeCommentRepo {
	repo := &fakeCommentRepo{byID: make(map[uint]*models.Comment)}
	for _, cm := range comments {
		repo.byID[cm.ID] = cm
	}
	return repo
}

func (f *fakeCommentRepo) GetCommentByID(id uint) (*models.Comment, error) {
	if cm, ok := f.byID[id]; ok {
		return cm, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCommentRepo) GetCommentsByDreamID(dreamID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, cm := range f.byID {
		if cm.DreamID == dreamID {
			out = append(out, *cm)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) CreateComment(comment *models.Comment) error {
	comment.ID = uint(len(f.byID) + 1)
	f.byID[comment.ID] = comment
	f.created = append(f.created, comment)
	return nil
}

// newTestContext builds an authenticated echo context the way the JWT
// middleware would leave it, plus the recorder for asserting the response.
func newTestContext(t *testing.T, method, target, body string, claims *models.JwtCustomClaims) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set("user", claims)
	}
	return e, c, rec
}

// serve runs a handler func and routes any returned error through echo's
// error handler so rec.Code reflects what a client would see.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}
