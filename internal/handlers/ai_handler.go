package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/ai"
)

// AIHandler exposes dream-title generation over HTTP
type AIHandler struct {
	titles ai.TitleService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(titles ai.TitleService) *AIHandler {
	return &AIHandler{titles: titles}
}

// RegisterAIRoutes registers title-generation routes; the group is expected
// to carry the origin-check middleware.
func (h *AIHandler) RegisterAIRoutes(g *echo.Group) {
	g.POST("/dream-title", h.GenerateDreamTitle)
}

// GenerateDreamTitle titles a dream text. Provider trouble never surfaces as
// an error here; those requests come back 200 with a fallback title.
func (h *AIHandler) GenerateDreamTitle(c echo.Context) error {
	var req ai.TitleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	result, err := h.titles.GenerateTitle(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrEmptyText):
			return echo.NewHTTPError(http.StatusBadRequest, "dreamText must not be empty")
		case errors.Is(err, ai.ErrQuotaExceeded):
			return echo.NewHTTPError(http.StatusTooManyRequests, "Daily title quota exceeded")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, result)
}
