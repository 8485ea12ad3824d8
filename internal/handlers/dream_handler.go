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

// DreamHandler handles HTTP requests related to dream entries
type DreamHandler struct {
	dreamRepository  repositories.DreamRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewDreamHandler creates a new DreamHandler
func NewDreamHandler(dreamRepo repositories.DreamRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *DreamHandler {
	return &DreamHandler{
		dreamRepository:  dreamRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
	}
}

// RegisterDreamRoutes registers dream-related routes
func (h *DreamHandler) RegisterDreamRoutes(g *echo.Group) {
	g.POST("/dreams", h.CreateDream)
	g.GET("/dreams/:id", h.GetDream)
	g.GET("/dreams", h.GetMyDreams)
	g.PUT("/dreams/:id", h.UpdateDream)
	g.DELETE("/dreams/:id", h.DeleteDream)
}

// CreateDream records a new dream for the authenticated user
func (h *DreamHandler) CreateDream(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)
	if viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateDreamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dream := &models.Dream{
		UserID:            viewerUID,
		Title:             req.Title,
		Content:           req.Content,
		Visibility:        models.Visibility(req.Visibility),
		ExcludedViewerIDs: req.ExcludedViewerIDs,
		TaggedUserIDs:     req.TaggedUserIDs,
	}

	if err := h.dreamRepository.CreateDream(c.Request().Context(), dream); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dream)
}

// GetDream retrieves a single dream, applying the visibility rules for the
// requesting viewer. Anonymous dreams are served with the owner stripped.
func (h *DreamHandler) GetDream(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDreamRepoError(err)
	}

	if dream.UserID != viewerUID {
		if err := requireDreamVisible(dream, viewerUID, h.userRepository, h.followRepository); err != nil {
			return err
		}
		if dream.Visibility == models.VisibilityAnonymous {
			anonymized := dream.Anonymized()
			return c.JSON(http.StatusOK, anonymized)
		}
	}

	return c.JSON(http.StatusOK, dream)
}

// GetMyDreams lists the authenticated user's own dreams, newest first
func (h *DreamHandler) GetMyDreams(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)
	if viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	dreams, err := h.dreamRepository.GetDreamsByUserID(c.Request().Context(), viewerUID, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if dreams == nil {
		dreams = []models.Dream{}
	}
	return c.JSON(http.StatusOK, dreams)
}

// UpdateDream updates a dream owned by the authenticated user
func (h *DreamHandler) UpdateDream(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)
	if viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateDreamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDreamRepoError(err)
	}
	if dream.UserID != viewerUID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own dreams")
	}

	if req.Title != "" {
		dream.Title = req.Title
	}
	if req.Content != "" {
		dream.Content = req.Content
	}
	if req.Visibility != "" {
		dream.Visibility = models.Visibility(req.Visibility)
	}
	if req.ExcludedViewerIDs != nil {
		dream.ExcludedViewerIDs = req.ExcludedViewerIDs
	}
	if req.TaggedUserIDs != nil {
		dream.TaggedUserIDs = req.TaggedUserIDs
	}

	if err := h.dreamRepository.UpdateDream(c.Request().Context(), c.Param("id"), dream); err != nil {
		return mapDreamRepoError(err)
	}
	return c.JSON(http.StatusOK, dream)
}

// DeleteDream deletes a dream owned by the authenticated user
func (h *DreamHandler) DeleteDream(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)
	if viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDreamRepoError(err)
	}
	if dream.UserID != viewerUID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own dreams")
	}

	if err := h.dreamRepository.DeleteDream(c.Request().Context(), c.Param("id")); err != nil {
		return mapDreamRepoError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapDreamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Dream not found")
	case errors.Is(err, repositories.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid dream ID")
	case errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Concurrent update, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
