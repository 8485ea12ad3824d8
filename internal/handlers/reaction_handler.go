package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/activity"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
)

// ReactionHandler handles reacting to dreams and fans the event out to the
// dream owner's inbox.
type ReactionHandler struct {
	dreamRepository  repositories.DreamRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	recorder         *activity.Recorder
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(dreamRepo repositories.DreamRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository, recorder *activity.Recorder) *ReactionHandler {
	return &ReactionHandler{
		dreamRepository:  dreamRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
		recorder:         recorder,
	}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.PUT("/dreams/:id/reaction", h.SetReaction)
	g.DELETE("/dreams/:id/reaction", h.ClearReaction)
}

// SetReaction records the caller's reaction on a dream. Switching directly
// from one symbol to a different one is rejected with 409; the client clears
// the old reaction first so the change is always explicit.
func (h *ReactionHandler) SetReaction(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)
	if viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SetReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reaction symbol is required; use DELETE to clear")
	}

	dream, err := h.dreamRepository.GetDreamByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDreamRepoError(err)
	}
	if err := requireDreamVisible(dream, viewerUID, h.userRepository, h.followRepository); err != nil {
		return err
	}
	if prev, ok := dream.Reactions[viewerUID]; ok && prev != req.Symbol {
		return echo.NewHTTPError(http.StatusConflict, "Another reaction is already set; clear it first")
	}

	change, err := h.dreamRepository.SetReaction(c.Request().Context(), c.Param("id"), viewerUID, req.Symbol)
	if err != nil {
		return mapDreamRepoError(err)
	}

	if change.Changed && change.NewSymbol != "" && dream.UserID != viewerUID {
		actorName := viewerUID
		if actor, err := h.userRepository.GetUserByFirebaseUID(viewerUID); err == nil {
			actorName = actor.Name
		}
		event := activity.Event{
			Type:       models.EventReaction,
			ActorUID:   viewerUID,
			ActorName:  actorName,
			DreamID:    c.Param("id"),
			DreamTitle: dream.Title,
			Symbol:     change.NewSymbol,
		}
		if _, err := h.recorder.RecordEvent(c.Request().Context(), dream.UserID, event); err != nil {
			// The reaction itself committed; fan-out is best effort here.
			log.Printf("Failed to record reaction event for dream %s: %v", c.Param("id"), err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"changed":         change.Changed,
		"previous_symbol": change.PreviousSymbol,
		"symbol":          change.NewSymbol,
	})
}

// ClearReaction removes the caller's reaction from a dream. Clearing an
// absent reaction is a no-op and still returns 200.
func (h *ReactionHandler) ClearReaction(c echo.Context) error {
	viewerUID := getFirebaseUIDFromContext(c)
	if viewerUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	change, err := h.dreamRepository.SetReaction(c.Request().Context(), c.Param("id"), viewerUID, "")
	if err != nil {
		return mapDreamRepoError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"changed":         change.Changed,
		"previous_symbol": change.PreviousSymbol,
	})
}
