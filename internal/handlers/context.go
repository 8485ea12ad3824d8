package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
)

// getUserClaims extracts the JWT claims set by the auth middleware
func getUserClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user's relational ID, or 0
func getUserIDFromContext(c echo.Context) uint {
	if claims := getUserClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// getFirebaseUIDFromContext returns the authenticated user's Firebase UID.
// Dreams, visibility sets and inbox entries are keyed in this ID space.
func getFirebaseUIDFromContext(c echo.Context) string {
	if claims := getUserClaims(c); claims != nil {
		return claims.FirebaseUID
	}
	return ""
}
