package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// eventRecorder collects bus events in delivery order
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.DomainEvent
}

func recordEvents(t *testing.T, bus eventbus.EventBus, types ...domain.EventType) *eventRecorder {
	t.Helper()
	r := &eventRecorder{}
	unsubscribe := bus.SubscribeMany(types, func(e domain.DomainEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	t.Cleanup(unsubscribe)
	return r
}

func (r *eventRecorder) all() []domain.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) ofType(eventType domain.EventType) []domain.DomainEvent {
	var out []domain.DomainEvent
	for _, e := range r.all() {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) count(eventType domain.EventType) int {
	return len(r.ofType(eventType))
}

func (r *eventRecorder) selections() []domain.Selection {
	var out []domain.Selection
	for _, e := range r.ofType(domain.EventSelectionChanged) {
		out = append(out, e.(domain.SelectionChangedEvent).Photos)
	}
	return out
}

func (r *eventRecorder) waitCount(t *testing.T, eventType domain.EventType, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.count(eventType) >= n }, waitFor, tick,
		"expected at least %d %s events", n, eventType)
}
