package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/feed"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// FeedHandler serves the following feed
type FeedHandler struct {
	aggregator       *feed.Aggregator
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(aggregator *feed.Aggregator, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		aggregator:       aggregator,
		userRepository:   userRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed builds the authenticated user's following feed
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)
	viewerUID := getFirebaseUIDFromContext(c)
	if userID == 0 || viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingUIDs, err := h.followRepository.GetFollowingUIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	dreams, err := h.aggregator.BuildFeed(c.Request().Context(), viewerUID, followingUIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Anonymous dreams leave the server without their owner attached.
	for i := range dreams {
		if dreams[i].Visibility == models.VisibilityAnonymous && dreams[i].UserID != viewerUID {
			dreams[i] = dreams[i].Anonymized()
		}
	}

	return c.JSON(http.StatusOK, dreams)
}

// RepoGraphResolver adapts the user and follow repositories to the
// aggregator's GraphResolver, bridging Firebase UIDs to relational ids.
type RepoGraphResolver struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

// NewRepoGraphResolver creates a RepoGraphResolver
func NewRepoGraphResolver(users repositories.UserRepository, follows repositories.FollowRepository) *RepoGraphResolver {
	return &RepoGraphResolver{users: users, follows: follows}
}

// ResolveGraph resolves ownerUID's follow state in UID space
func (r *RepoGraphResolver) ResolveGraph(_ context.Context, ownerUID string) (*models.SocialGraph, error) {
	owner, err := r.users.GetUserByFirebaseUID(ownerUID)
	if err != nil {
		return nil, err
	}
	return r.follows.GetSocialGraph(owner.ID)
}
