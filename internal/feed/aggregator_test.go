package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// -------- test fakes --------

type fakeQuerier struct {
	mu      sync.Mutex
	batches [][]string
	dreams  map[string][]models.Dream // keyed by first owner in batch
	err     error
	delay   time.Duration
}

func (f *fakeQuerier) GetSharedDreamsByOwners(ctx context.Context, ownerUIDs []string, limit int64) ([]models.Dream, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.batches = append(f.batches, ownerUIDs)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Dream
	for _, uid := range ownerUIDs {
		out = append(out, f.dreams[uid]...)
	}
	return out, nil
}

type fakeResolver struct {
	mu     sync.Mutex
	graphs map[string]*models.SocialGraph
	calls  []string
}

func (f *fakeResolver) ResolveGraph(ctx context.Context, ownerUID string) (*models.SocialGraph, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ownerUID)
	f.mu.Unlock()
	return f.graphs[ownerUID], nil
}

func dreamAt(owner string, vis models.Visibility, created time.Time) models.Dream {
	return models.Dream{
		ID:         primitive.NewObjectID(),
		UserID:     owner,
		Visibility: vis,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestBuildFeedEmptyFollowing(t *testing.T) {
	q := &fakeQuerier{}
	agg := NewAggregator(q, &fakeResolver{})

	got, err := agg.BuildFeed(context.Background(), "viewer", nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, q.batches, "empty following set must not query the store")
}

func TestBuildFeedPartitionsBatches(t *testing.T) {
	owners := make([]string, 23)
	for i := range owners {
		owners[i] = fmt.Sprintf("owner-%d", i)
	}
	q := &fakeQuerier{}
	agg := NewAggregator(q, &fakeResolver{})

	_, err := agg.BuildFeed(context.Background(), "viewer", owners)

	require.NoError(t, err)
	require.Len(t, q.batches, 3)
	assert.Len(t, q.batches[0], 10)
	assert.Len(t, q.batches[1], 10)
	assert.Len(t, q.batches[2], 3)
}

func TestBuildFeedFiltersAndSorts(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	old := dreamAt("alice", models.VisibilityPublic, base)
	newer := dreamAt("bob", models.VisibilityPublic, base.Add(time.Hour))
	private := dreamAt("alice", models.VisibilityPrivate, base.Add(2*time.Hour))
	followOnly := dreamAt("carol", models.VisibilityFollowing, base.Add(30*time.Minute))

	q := &fakeQuerier{dreams: map[string][]models.Dream{
		"alice": {old, private},
		"bob":   {newer},
		"carol": {followOnly},
	}}
	resolver := &fakeResolver{graphs: map[string]*models.SocialGraph{
		"carol": {FollowingUIDs: []string{"viewer"}},
	}}
	agg := NewAggregator(q, resolver)

	got, err := agg.BuildFeed(context.Background(), "viewer", []string{"alice", "bob", "carol"})

	require.NoError(t, err)
	require.Len(t, got, 3, "private dream must be dropped")
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, followOnly.ID, got[1].ID)
	assert.Equal(t, old.ID, got[2].ID)
}

func TestBuildFeedDropsUnviewableFollowScoped(t *testing.T) {
	d := dreamAt("carol", models.VisibilityFollowing, time.Now())
	q := &fakeQuerier{dreams: map[string][]models.Dream{"carol": {d}}}
	// carol does not follow the viewer
	resolver := &fakeResolver{graphs: map[string]*models.SocialGraph{
		"carol": {FollowingUIDs: []string{"someone-else"}},
	}}

	got, err := NewAggregator(q, resolver).BuildFeed(context.Background(), "viewer", []string{"carol"})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildFeedDeduplicatesAcrossBatches(t *testing.T) {
	shared := dreamAt("owner-0", models.VisibilityPublic, time.Now())
	q := &fakeQuerier{dreams: map[string][]models.Dream{}}
	owners := make([]string, 12)
	for i := range owners {
		owners[i] = fmt.Sprintf("owner-%d", i)
		// Every batch returns the same document.
		q.dreams[owners[i]] = []models.Dream{shared}
	}

	got, err := NewAggregator(q, &fakeResolver{}).BuildFeed(context.Background(), "viewer", owners)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBuildFeedResolvesEachOwnerOnce(t *testing.T) {
	base := time.Now()
	q := &fakeQuerier{dreams: map[string][]models.Dream{
		"alice": {
			dreamAt("alice", models.VisibilityPublic, base),
			dreamAt("alice", models.VisibilityPublic, base.Add(time.Minute)),
		},
	}}
	resolver := &fakeResolver{}

	_, err := NewAggregator(q, resolver).BuildFeed(context.Background(), "viewer", []string{"alice"})

	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, resolver.calls)
}

func TestSubscriptionDeliversLatestEpoch(t *testing.T) {
	d := dreamAt("alice", models.VisibilityPublic, time.Now())
	q := &fakeQuerier{
		dreams: map[string][]models.Dream{"alice": {d}},
		delay:  20 * time.Millisecond,
	}
	sub := NewSubscription(NewAggregator(q, &fakeResolver{}), "viewer")
	defer sub.Close()

	sub.Update([]string{"bob"})   // stale: will lose the race or be discarded
	sub.Update([]string{"alice"}) // latest epoch

	deadline := time.After(2 * time.Second)
	for {
		select {
		case feedResult := <-sub.Updates():
			if len(feedResult) == 1 {
				assert.Equal(t, d.ID, feedResult[0].ID)
				return
			}
			// A stale empty result sneaking through would mean the epoch
			// guard failed once the latest build has finished.
		case <-deadline:
			t.Fatal("timed out waiting for the latest feed")
		}
	}
}

func TestSubscriptionCloseDiscardsInFlight(t *testing.T) {
	q := &fakeQuerier{
		dreams: map[string][]models.Dream{"alice": {dreamAt("alice", models.VisibilityPublic, time.Now())}},
		delay:  30 * time.Millisecond,
	}
	sub := NewSubscription(NewAggregator(q, &fakeResolver{}), "viewer")

	sub.Update([]string{"alice"})
	sub.Close()

	select {
	case got, ok := <-sub.Updates():
		if ok {
			t.Fatalf("closed subscription delivered a result: %v", got)
		}
	case <-time.After(100 * time.Millisecond):
		// No delivery: the in-flight rebuild was discarded.
	}
}

func TestSubscriptionUpdateAfterCloseIsIgnored(t *testing.T) {
	q := &fakeQuerier{dreams: map[string][]models.Dream{}}
	sub := NewSubscription(NewAggregator(q, &fakeResolver{}), "viewer")
	sub.Close()

	sub.Update([]string{"alice"})
	time.Sleep(20 * time.Millisecond)

	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Empty(t, q.batches)
}
