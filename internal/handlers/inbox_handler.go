package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// InboxHandler serves the activity inbox
type InboxHandler struct {
	inboxRepository repositories.InboxRepository
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(inboxRepo repositories.InboxRepository) *InboxHandler {
	return &InboxHandler{inboxRepository: inboxRepo}
}

// RegisterInboxRoutes registers inbox-related routes
func (h *InboxHandler) RegisterInboxRoutes(g *echo.Group) {
	g.GET("/inbox", h.GetInbox)
	g.GET("/inbox/unread-count", h.GetUnreadCount)
	g.PUT("/inbox/:id/read", h.MarkAsRead)
	g.PUT("/inbox/read-all", h.MarkAllAsRead)
}

// GetInbox lists the caller's inbox entries, newest first, paginated
func (h *InboxHandler) GetInbox(c echo.Context) error {
	recipientUID := getFirebaseUIDFromContext(c)
	if recipientUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, total, err := h.inboxRepository.GetByRecipientUID(recipientUID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []models.InboxEntry{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"entries": entries,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetUnreadCount returns how many unread entries the caller has
func (h *InboxHandler) GetUnreadCount(c echo.Context) error {
	recipientUID := getFirebaseUIDFromContext(c)
	if recipientUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.inboxRepository.GetUnreadCount(recipientUID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkAsRead marks one of the caller's inbox entries as read
func (h *InboxHandler) MarkAsRead(c echo.Context) error {
	recipientUID := getFirebaseUIDFromContext(c)
	if recipientUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	entryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid inbox entry ID")
	}

	if err := h.inboxRepository.MarkAsRead(uint(entryID), recipientUID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Inbox entry not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllAsRead marks all of the caller's inbox entries as read
func (h *InboxHandler) MarkAllAsRead(c echo.Context) error {
	recipientUID := getFirebaseUIDFromContext(c)
	if recipientUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.inboxRepository.MarkAllAsRead(recipientUID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
