package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"github.com/somnia-app/somnia/backend/internal/visibility"
)

// ownerGraph loads a dream owner's social graph in UID space. A missing
// owner or lookup failure yields a nil graph, which denies the follow-scoped
// visibility levels.
func ownerGraph(users repositories.UserRepository, follows repositories.FollowRepository, ownerUID string) *models.SocialGraph {
	owner, err := users.GetUserByFirebaseUID(ownerUID)
	if err != nil {
		return nil
	}
	graph, err := follows.GetSocialGraph(owner.ID)
	if err != nil {
		return nil
	}
	return graph
}

// requireDreamVisible applies the visibility rules before any dream-scoped
// read, write, or fan-out. A denied dream answers 404 just like the read
// path, so a blocked or unauthorized viewer cannot distinguish hidden from
// missing on any endpoint.
func requireDreamVisible(dream *models.Dream, viewerUID string, users repositories.UserRepository, follows repositories.FollowRepository) error {
	if viewerUID != "" && dream.UserID == viewerUID {
		return nil
	}
	if !visibility.CanView(dream, viewerUID, ownerGraph(users, follows, dream.UserID)) {
		return echo.NewHTTPError(http.StatusNotFound, "Dream not found")
	}
	return nil
}
