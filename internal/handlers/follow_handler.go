package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"gorm.io/gorm"
)

// FollowHandler handles HTTP requests related to the follow graph
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{followRepository: followRepo, userRepository: userRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/follow-stats", h.GetFollowStats)
}

// FollowUser makes the authenticated user follow the target user. Follow
// events do not reach the inbox; the fan-out allow-list is closed.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	if followerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.targetUser(c)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	already, err := h.followRepository.IsFollowing(followerID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if already {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: target.ID}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, follow)
}

// UnfollowUser removes the follow relationship
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	if followerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.DeleteFollow(followerID, target.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// GetFollowers lists the target user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	users, err := h.followRepository.GetFollowers(target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, compactUsers(users))
}

// GetFollowing lists who the target user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	users, err := h.followRepository.GetFollowing(target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, compactUsers(users))
}

// GetFollowStats returns follower/following counts for the target user
func (h *FollowHandler) GetFollowStats(c echo.Context) error {
	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	followers, err := h.followRepository.GetFollowersCount(target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	following, err := h.followRepository.GetFollowingCount(target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"followers": followers, "following": following})
}

func (h *FollowHandler) targetUser(c echo.Context) (*models.User, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}

func compactUsers(users []models.User) []models.UserCompact {
	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return compact
}
