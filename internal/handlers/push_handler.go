package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/push"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// PushHandler exposes the push dispatch pipeline over HTTP
type PushHandler struct {
	dispatcher *push.Dispatcher
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(dispatcher *push.Dispatcher) *PushHandler {
	return &PushHandler{dispatcher: dispatcher}
}

// RegisterPushRoutes registers push-dispatch routes; the group is expected to
// carry the Firebase ID-token middleware.
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.POST("/dispatch", h.Dispatch)
}

// Dispatch delivers one notification on behalf of the verified caller
func (h *PushHandler) Dispatch(c echo.Context) error {
	callerUID, _ := c.Get("firebaseUID").(string)
	if callerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req push.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.dispatcher.Dispatch(c.Request().Context(), callerUID, req)
	if err != nil {
		switch {
		case errors.Is(err, push.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "Caller is not the event actor")
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Recipient not found")
		case errors.Is(err, repositories.ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, push.ErrUpstream):
			return echo.NewHTTPError(http.StatusBadGateway, "Push transport unavailable")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, result)
}
