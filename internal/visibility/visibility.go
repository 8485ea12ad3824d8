// Package visibility decides whether a viewer may see a dream. CanView is a
// pure function over the dream's access fields and the owner's follow state,
// so the same inputs always produce the same answer and whole result sets can
// be filtered deterministically.
package visibility

import "github.com/somnia-app/somnia/backend/internal/models"

// CanView reports whether viewerUID may see the dream. An empty viewerUID
// represents an unauthenticated viewer. graph carries the owner's follow
// sets and may be nil when unresolved, in which case the follow-scoped
// levels deny.
//
// Rule order matters and is fixed:
//  1. the owner always sees their own dream, even if self-excluded;
//  2. the owner's block-list beats everything else, tags included;
//  3. a tagged viewer sees the dream regardless of its visibility level;
//  4. otherwise the visibility level decides.
//
// Note the "following" level checks membership of the viewer in the OWNER's
// followingUIDs, i.e. dreams shared with people the owner follows. That is
// the shipped behavior and is kept as-is.
func CanView(dream *models.Dream, viewerUID string, graph *models.SocialGraph) bool {
	if dream == nil {
		return false
	}
	if viewerUID != "" && viewerUID == dream.UserID {
		return true
	}
	if viewerUID != "" && contains(dream.ExcludedViewerIDs, viewerUID) {
		return false
	}
	if viewerUID != "" && contains(dream.TaggedUserIDs, viewerUID) {
		return true
	}

	switch dream.Visibility {
	case models.VisibilityPublic, models.VisibilityAnonymous:
		return true
	case models.VisibilityFollowing:
		return viewerUID != "" && graph != nil && contains(graph.FollowingUIDs, viewerUID)
	case models.VisibilityFollowers:
		return viewerUID != "" && graph != nil && contains(graph.FollowerUIDs, viewerUID)
	default:
		// private or unrecognized
		return false
	}
}

// Filter returns the dreams from in that viewerUID may see. graphs maps
// owner UID to that owner's follow state; missing owners resolve as nil.
func Filter(in []models.Dream, viewerUID string, graphs map[string]*models.SocialGraph) []models.Dream {
	out := make([]models.Dream, 0, len(in))
	for i := range in {
		if CanView(&in[i], viewerUID, graphs[in[i].UserID]) {
			out = append(out, in[i])
		}
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
