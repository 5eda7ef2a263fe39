// Package feed fans the bounded recent window of readings out to realtime
// subscribers. Every publish replaces the previous snapshot wholesale; there
// is no incremental merge, so a dropped intermediate snapshot loses nothing.
package feed

import (
	"sync"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/observability"
)

// defaultBuffer is the per-subscriber channel depth.
const defaultBuffer = 4

// Hub distributes reading snapshots to subscribers over channels.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]chan models.Snapshot
	nextID  int
	last    models.Snapshot
	hasLast bool
	metrics *observability.Metrics
}

// NewHub creates an empty hub. Metrics may be nil.
func NewHub(metrics *observability.Metrics) *Hub {
	return &Hub{
		subs:    make(map[int]chan models.Snapshot),
		metrics: metrics,
	}
}

// Publish delivers the snapshot to every subscriber. A subscriber whose
// buffer is full loses its oldest pending snapshot so the newest always gets
// through; the publisher never blocks.
func (h *Hub) Publish(snap models.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = snap
	h.hasLast = true
	if h.metrics != nil {
		h.metrics.FeedPublishes.Inc()
	}

	for _, ch := range h.subs {
		sendLatest(ch, snap)
	}
}

// Subscribe registers a new subscriber and returns its channel together with
// a release func. Release is idempotent and must be called on consumer
// teardown; it closes the channel. The last published snapshot, if any, is
// delivered immediately.
func (h *Hub) Subscribe() (<-chan models.Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.Snapshot, defaultBuffer)
	h.subs[id] = ch
	if h.metrics != nil {
		h.metrics.FeedSubscribers.Inc()
	}
	if h.hasLast {
		ch <- h.last
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
			if h.metrics != nil {
				h.metrics.FeedSubscribers.Dec()
			}
		})
	}
	return ch, release
}

// Subscribers reports the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// sendLatest pushes snap onto ch, evicting the oldest buffered snapshot when
// the subscriber is behind.
func sendLatest(ch chan models.Snapshot, snap models.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch: // drop the stalest entry and retry
			default:
			}
		}
	}
}
