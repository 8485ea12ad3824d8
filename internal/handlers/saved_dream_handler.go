package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// SavedDreamHandler handles dream bookmarks
type SavedDreamHandler struct {
	savedDreamRepository repositories.SavedDreamRepository
	dreamRepository      repositories.DreamRepository
	userRepository       repositories.UserRepository
	followRepository     repositories.FollowRepository
}

// NewSavedDreamHandler creates a new SavedDreamHandler
func NewSavedDreamHandler(savedRepo repositories.SavedDreamRepository, dreamRepo repositories.DreamRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *SavedDreamHandler {
	return &SavedDreamHandler{
		savedDreamRepository: savedRepo,
		dreamRepository:      dreamRepo,
		userRepository:       userRepo,
		followRepository:     followRepo,
	}
}

// RegisterSavedDreamRoutes registers bookmark-related routes
func (h *SavedDreamHandler) RegisterSavedDreamRoutes(g *echo.Group) {
	g.POST("/dreams/:id/save", h.SaveDream)
	g.DELETE("/dreams/:id/save", h.UnsaveDream)
	g.GET("/saved-dreams", h.GetSavedDreams)
}

// SaveDream bookmarks a dream for the authenticated user
func (h *SavedDreamHandler) SaveDream(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	dreamID := c.Param("id")
	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), dreamID)
	if err != nil {
		return mapDreamRepoError(err)
	}
	if err := requireDreamVisible(dream, getFirebaseUIDFromContext(c), h.userRepository, h.followRepository); err != nil {
		return err
	}

	saved := &models.SavedDream{UserID: userID, DreamID: dreamID}
	if err := h.savedDreamRepository.SaveDream(saved); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, saved)
}

// UnsaveDream removes a bookmark
func (h *SavedDreamHandler) UnsaveDream(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.savedDreamRepository.UnsaveDream(userID, c.Param("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Saved dream not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSavedDreams lists the authenticated user's bookmarks
func (h *SavedDreamHandler) GetSavedDreams(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	saved, err := h.savedDreamRepository.GetSavedDreams(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if saved == nil {
		saved = []models.SavedDream{}
	}
	return c.JSON(http.StatusOK, saved)
}
