// Package feed builds the following feed: bounded per-batch queries against
// the dream store, merged, access-filtered, and sorted by recency.
package feed

import (
	"context"
	"sort"

	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/visibility"
)

const (
	// batchSize is bounded by the store's IN-clause query limit.
	batchSize = 10
	// perBatchLimit caps how many recent dreams one batch query returns.
	perBatchLimit = 20
)

// DreamQuerier is the slice of the dream repository the aggregator uses.
type DreamQuerier interface {
	GetSharedDreamsByOwners(ctx context.Context, ownerUIDs []string, limit int64) ([]models.Dream, error)
}

// GraphResolver resolves a dream owner's follow state for visibility checks.
type GraphResolver interface {
	ResolveGraph(ctx context.Context, ownerUID string) (*models.SocialGraph, error)
}

// Aggregator merges per-follow-target queries into one feed.
type Aggregator struct {
	dreams DreamQuerier
	graphs GraphResolver
}

// NewAggregator creates an Aggregator
func NewAggregator(dreams DreamQuerier, graphs GraphResolver) *Aggregator {
	return &Aggregator{dreams: dreams, graphs: graphs}
}

// BuildFeed returns the dreams visible to viewerUID among those authored by
// followingUIDs, newest activity first. An empty following set returns an
// empty feed without touching the store. Owners whose graph fails to resolve
// are treated as unresolved (their follow-scoped dreams are dropped, public
// ones survive).
func (a *Aggregator) BuildFeed(ctx context.Context, viewerUID string, followingUIDs []string) ([]models.Dream, error) {
	if len(followingUIDs) == 0 {
		return []models.Dream{}, nil
	}

	// One bounded query per batch; later batches overwrite earlier
	// duplicates of the same id, which is harmless since every batch reads
	// the same underlying document.
	merged := make(map[string]models.Dream)
	order := make([]string, 0, len(followingUIDs)*2)
	for _, batch := range partition(followingUIDs, batchSize) {
		dreams, err := a.dreams.GetSharedDreamsByOwners(ctx, batch, perBatchLimit)
		if err != nil {
			return nil, err
		}
		for _, d := range dreams {
			id := d.ID.Hex()
			if _, seen := merged[id]; !seen {
				order = append(order, id)
			}
			merged[id] = d
		}
	}

	// Resolve each distinct owner once per build.
	graphs := make(map[string]*models.SocialGraph)
	candidates := make([]models.Dream, 0, len(merged))
	for _, id := range order {
		d := merged[id]
		if d.Visibility == models.VisibilityPrivate {
			continue
		}
		if _, ok := graphs[d.UserID]; !ok {
			graph, err := a.graphs.ResolveGraph(ctx, d.UserID)
			if err != nil {
				graph = nil
			}
			graphs[d.UserID] = graph
		}
		candidates = append(candidates, d)
	}

	result := visibility.Filter(candidates, viewerUID, graphs)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastActivity().After(result[j].LastActivity())
	})
	return result, nil
}

// partition splits uids into slices of at most size elements
func partition(uids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(uids); start += size {
		end := start + size
		if end > len(uids) {
			end = len(uids)
		}
		batches = append(batches, uids[start:end])
	}
	return batches
}
