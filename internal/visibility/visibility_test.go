package visibility

import (
	"testing"

	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func dream(owner string, vis models.Visibility) *models.Dream {
	return &models.Dream{UserID: owner, Visibility: vis}
}

func TestCanViewOwnerAlwaysSees(t *testing.T) {
	for _, vis := range []models.Visibility{
		models.VisibilityPrivate, models.VisibilityPublic, models.VisibilityFollowing,
		models.VisibilityFollowers, models.VisibilityAnonymous, "bogus",
	} {
		d := dream("owner", vis)
		// Even a stale self-exclusion must not lock the owner out.
		d.ExcludedViewerIDs = []string{"owner"}
		assert.True(t, CanView(d, "owner", nil), "visibility %q", vis)
	}
}

func TestCanViewBlockListBeatsEverything(t *testing.T) {
	d := dream("owner", models.VisibilityPublic)
	d.ExcludedViewerIDs = []string{"blocked"}
	d.TaggedUserIDs = []string{"blocked"}
	graph := &models.SocialGraph{FollowingUIDs: []string{"blocked"}, FollowerUIDs: []string{"blocked"}}

	assert.False(t, CanView(d, "blocked", graph), "excluded viewer sees public dream")
	assert.True(t, CanView(d, "someone-else", graph))
}

func TestCanViewTagOverridesVisibility(t *testing.T) {
	d := dream("owner", models.VisibilityPrivate)
	d.TaggedUserIDs = []string{"tagged"}

	assert.True(t, CanView(d, "tagged", nil))
	assert.False(t, CanView(d, "untagged", nil))
}

func TestCanViewPublicAndAnonymous(t *testing.T) {
	assert.True(t, CanView(dream("owner", models.VisibilityPublic), "", nil), "unauthenticated viewer")
	assert.True(t, CanView(dream("owner", models.VisibilityAnonymous), "", nil))
	assert.True(t, CanView(dream("owner", models.VisibilityPublic), "anyone", nil))
}

func TestCanViewFollowing(t *testing.T) {
	d := dream("owner", models.VisibilityFollowing)
	graph := &models.SocialGraph{FollowingUIDs: []string{"v1"}}

	assert.True(t, CanView(d, "v1", graph))
	assert.False(t, CanView(d, "v2", graph))
	assert.False(t, CanView(d, "", graph), "unauthenticated")
	assert.False(t, CanView(d, "v1", nil), "unresolved graph denies")
}

func TestCanViewFollowers(t *testing.T) {
	d := dream("owner", models.VisibilityFollowers)
	graph := &models.SocialGraph{FollowerUIDs: []string{"fan"}}

	assert.True(t, CanView(d, "fan", graph))
	assert.False(t, CanView(d, "stranger", graph))
	assert.False(t, CanView(d, "", graph))
}

func TestCanViewPrivateAndUnknown(t *testing.T) {
	assert.False(t, CanView(dream("owner", models.VisibilityPrivate), "viewer", nil))
	assert.False(t, CanView(dream("owner", "???"), "viewer", nil))
	assert.False(t, CanView(nil, "viewer", nil))
}

func TestFilter(t *testing.T) {
	dreams := []models.Dream{
		{UserID: "a", Visibility: models.VisibilityPublic},
		{UserID: "b", Visibility: models.VisibilityPrivate},
		{UserID: "c", Visibility: models.VisibilityFollowing},
	}
	graphs := map[string]*models.SocialGraph{
		"c": {FollowingUIDs: []string{"viewer"}},
	}

	got := Filter(dreams, "viewer", graphs)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "a", got[0].UserID)
		assert.Equal(t, "c", got[1].UserID)
	}
}
