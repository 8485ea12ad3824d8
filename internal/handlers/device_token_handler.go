package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// DeviceTokenHandler handles push-token registration for the caller's devices
type DeviceTokenHandler struct {
	tokenRepository repositories.DeviceTokenRepository
}

// NewDeviceTokenHandler creates a new DeviceTokenHandler
func NewDeviceTokenHandler(tokenRepo repositories.DeviceTokenRepository) *DeviceTokenHandler {
	return &DeviceTokenHandler{tokenRepository: tokenRepo}
}

// RegisterDeviceTokenRoutes registers device-token routes
func (h *DeviceTokenHandler) RegisterDeviceTokenRoutes(g *echo.Group) {
	g.POST("/device-tokens", h.RegisterToken)
	g.DELETE("/device-tokens", h.RemoveToken)
}

// RegisterToken registers a device token for push delivery; re-registering
// the same token is a no-op.
func (h *DeviceTokenHandler) RegisterToken(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token := &models.DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := h.tokenRepository.RegisterToken(token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, token)
}

// RemoveToken deletes one of the caller's device tokens (logout)
func (h *DeviceTokenHandler) RemoveToken(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}

	if err := h.tokenRepository.RemoveToken(userID, req.Token); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Device token not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
