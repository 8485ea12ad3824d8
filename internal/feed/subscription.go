package feed

import (
	"context"
	"sync"

	"github.com/somnia-app/somnia/backend/internal/models"
)

// Subscription is the live variant of BuildFeed: every Update or Invalidate
// schedules an asynchronous rebuild, and only the rebuild matching the
// latest epoch may publish its result. A rebuild in flight when the inputs
// change again (or the subscription closes) discards its output.
type Subscription struct {
	agg       *Aggregator
	viewerUID string

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	epoch     uint64
	following []string
	closed    bool

	updates chan []models.Dream
}

// NewSubscription creates a live feed for viewerUID. The caller consumes
// Updates() and must Close() when done.
func NewSubscription(agg *Aggregator, viewerUID string) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscription{
		agg:       agg,
		viewerUID: viewerUID,
		ctx:       ctx,
		cancel:    cancel,
		updates:   make(chan []models.Dream, 1),
	}
}

// Updates delivers rebuilt feeds. Only the most recent result is retained if
// the consumer lags.
func (s *Subscription) Updates() <-chan []models.Dream {
	return s.updates
}

// Update replaces the following set and schedules a rebuild
func (s *Subscription) Update(followingUIDs []string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.following = append([]string(nil), followingUIDs...)
	s.epoch++
	epoch := s.epoch
	following := s.following
	s.mu.Unlock()

	go s.rebuild(epoch, following)
}

// Invalidate schedules a rebuild with the current following set. Called when
// an owner's profile or an underlying query result is known to have changed.
func (s *Subscription) Invalidate() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	following := s.following
	s.mu.Unlock()

	go s.rebuild(epoch, following)
}

// Close cancels any rebuild in flight and releases the subscription
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.epoch++ // invalidate anything in flight
	s.mu.Unlock()

	s.cancel()
}

func (s *Subscription) rebuild(epoch uint64, following []string) {
	dreams, err := s.agg.BuildFeed(s.ctx, s.viewerUID, following)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		// Stale result; a newer rebuild owns the output now.
		return
	}

	// Latest-wins delivery: drop an unconsumed older result.
	select {
	case <-s.updates:
	default:
	}
	s.updates <- dreams
}
