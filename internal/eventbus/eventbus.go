package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	SubscribeMany(eventTypes []EventType, handler EventHandler) func()
	Close()
}

// Option configures a bus
type Option func(*bus)

// WithReplay marks event types whose last published value is replayed to
// every new subscriber.
func WithReplay(eventTypes ...EventType) Option {
	return func(b *bus) {
		for _, t := range eventTypes {
			b.replay[t] = true
		}
	}
}

// bus is the concrete implementation of EventBus.
// Every subscription owns an ordered queue drained by its own goroutine, so
// Publish never blocks on a slow handler and never drops an event.
type bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[EventType]map[uint64]*subscription
	replay   map[EventType]bool
	last     map[EventType]DomainEvent
	closed   bool
}

// New creates a new event bus
func New(opts ...Option) EventBus {
	b := &bus{
		handlers: make(map[EventType]map[uint64]*subscription),
		replay:   make(map[EventType]bool),
		last:     make(map[EventType]DomainEvent),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	log.Debug().Str("event", string(event.Type())).Msg("Publishing event")

	if b.replay[event.Type()] {
		b.last[event.Type()] = event
	}
	for _, sub := range b.handlers[event.Type()] {
		sub.enqueue(event)
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	return b.SubscribeMany([]EventType{eventType}, handler)
}

// SubscribeMany delivers events of all given types to one handler, in
// publication order.
func (b *bus) SubscribeMany(eventTypes []EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := newSubscription(b.nextID, handler)
	if b.closed {
		sub.stop()
		return func() {}
	}

	for _, t := range eventTypes {
		if b.handlers[t] == nil {
			b.handlers[t] = make(map[uint64]*subscription)
		}
		b.handlers[t][sub.id] = sub
		if last, ok := b.last[t]; ok {
			sub.enqueue(last)
		}
	}
	go sub.run()

	return func() {
		b.mu.Lock()
		for _, t := range eventTypes {
			delete(b.handlers[t], sub.id)
		}
		b.mu.Unlock()
		sub.stop()
	}
}

// Close detaches all subscribers; pending events are discarded
func (b *bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for t, subs := range b.handlers {
		for _, sub := range subs {
			sub.stop()
		}
		delete(b.handlers, t)
	}
}

type subscription struct {
	id      uint64
	handler EventHandler

	mu    sync.Mutex
	queue []DomainEvent
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newSubscription(id uint64, handler EventHandler) *subscription {
	return &subscription{
		id:      id,
		handler: handler,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (s *subscription) enqueue(event DomainEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, event)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.queue = nil
		s.mu.Unlock()
	})
}

func (s *subscription) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) next() (DomainEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, false
	}
	event := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return event, true
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			event, ok := s.next()
			if !ok {
				break
			}
			if s.stopped() {
				return
			}
			s.call(event)
		}
	}
}

func (s *subscription) call(event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("event", string(event.Type())).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Event handler panic")
		}
	}()
	s.handler(event)
}
