package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
)

// DefaultDebounce is the quiescence window applied to accepted taps
const DefaultDebounce = 250 * time.Millisecond

// SelectionOptions tunes the selection pipeline
type SelectionOptions struct {
	MaxPhotos     int
	Debounce      time.Duration
	LandscapeOnly bool
}

// DefaultSelectionOptions returns the stock pipeline settings
func DefaultSelectionOptions() SelectionOptions {
	return SelectionOptions{
		MaxPhotos:     domain.DefaultMaxPhotos,
		Debounce:      DefaultDebounce,
		LandscapeOnly: true,
	}
}

// SelectionService owns the selection aggregate and runs every picker
// session through the gates:
//
//	capacity -> orientation -> duplicate -> debounce -> append
//
// All aggregate and session state is guarded by one mutex, and every event
// is published while holding it so observers see changes in order.
type SelectionService struct {
	catalog ports.Catalog
	bus     eventbus.EventBus
	opts    SelectionOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	photos   domain.Selection
	sessions map[string]*PickerSession
	closed   bool
}

// NewSelectionService creates the controller with an empty aggregate and
// publishes the initial empty snapshot.
func NewSelectionService(catalog ports.Catalog, bus eventbus.EventBus, opts SelectionOptions) *SelectionService {
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = domain.DefaultMaxPhotos
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SelectionService{
		catalog:  catalog,
		bus:      bus,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		photos:   domain.Selection{},
		sessions: make(map[string]*PickerSession),
	}

	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()
	return s
}

// Options returns the effective pipeline settings
func (s *SelectionService) Options() SelectionOptions {
	return s.opts
}

// OpenPicker attaches a new raw event source to the pipeline.
// After teardown the returned session ignores everything.
func (s *SelectionService) OpenPicker() *PickerSession {
	session := newPickerSession(s)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		session.done = true
		return session
	}

	s.sessions[session.id] = session
	log.Debug().Str("session", session.id).Msg("Picker opened")
	s.bus.Publish(domain.PickerOpenedEvent{SessionID: session.id})
	return session
}

// Clear empties the aggregate, republishes the empty snapshot and re-opens
// the capacity gate of every active session.
func (s *SelectionService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.photos = domain.Selection{}
	for _, session := range s.sessions {
		session.gateClosed = false
	}
	log.Debug().Msg("Selection cleared")
	s.publishLocked()
}

// Snapshot returns a copy of the current aggregate
func (s *SelectionService) Snapshot() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photos.Clone()
}

// Close tears the pipeline down. Pending debounce timers are cancelled,
// sessions are detached and no further event is published.
func (s *SelectionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()

	for id, session := range s.sessions {
		session.stopTimer()
		session.takeLocked()
		session.done = true
		delete(s.sessions, id)
	}
	log.Debug().Msg("Selection pipeline closed")
}

// observe runs one raw event through the gates
func (s *SelectionService) observe(session *PickerSession, photo domain.Photo) {
	// Bounds may touch the disk, keep it outside the lock
	width, height, boundsErr := s.catalog.Bounds(s.ctx, photo)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || session.done {
		return
	}
	session.taps++

	full := len(s.photos) >= s.opts.MaxPhotos
	if full {
		// Fires on aggregate size alone, whatever the other gates decide
		s.bus.Publish(domain.CollageStatusEvent{SessionID: session.id, Status: domain.CollageLimitReached})
	}

	if session.gateClosed {
		return
	}
	if full {
		session.gateClosed = true
		log.Debug().Str("session", session.id).Msg("Capacity gate closed")
		s.flushLocked(session)
		return
	}

	if boundsErr != nil {
		log.Warn().Err(boundsErr).Str("photo", photo.ID).Msg("Cannot read photo bounds, skipping")
		return
	}
	if s.opts.LandscapeOnly && !domain.IsLandscape(width, height) {
		log.Debug().Str("photo", photo.ID).Int("width", width).Int("height", height).Msg("Rejected non-landscape photo")
		return
	}
	if s.photos.Contains(photo.ID) {
		log.Debug().Str("photo", photo.ID).Msg("Rejected duplicate photo")
		return
	}

	session.stopTimer()
	session.holdLocked(photo)
	seq := session.seq
	session.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.fire(session, seq)
	})
}

// fire is the debounce timer callback
func (s *SelectionService) fire(session *PickerSession, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || session.seq != seq {
		return
	}
	session.timer = nil
	if photo, ok := session.takeLocked(); ok {
		s.appendLocked(session, photo)
	}
}

// complete ends a session's raw stream
func (s *SelectionService) complete(session *PickerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || session.done {
		return
	}

	s.flushLocked(session)
	session.done = true
	delete(s.sessions, session.id)

	log.Debug().
		Str("session", session.id).
		Int("taps", session.taps).
		Int("accepted", session.accepted).
		Msg("Picker closed")

	s.bus.Publish(domain.PickerClosedEvent{
		SessionID: session.id,
		Taps:      session.taps,
		Accepted:  session.accepted,
	})
	s.bus.Publish(domain.ThumbnailStatusEvent{SessionID: session.id, Status: domain.ThumbnailReady})
}

// flushLocked applies the pending photo immediately
func (s *SelectionService) flushLocked(session *PickerSession) {
	session.stopTimer()
	if photo, ok := session.takeLocked(); ok {
		s.appendLocked(session, photo)
	}
}

// appendLocked re-checks the invariants, appends and republishes
func (s *SelectionService) appendLocked(session *PickerSession, photo domain.Photo) {
	if len(s.photos) >= s.opts.MaxPhotos {
		log.Debug().Str("photo", photo.ID).Msg("Dropped pending photo, selection is full")
		return
	}
	if s.photos.Contains(photo.ID) {
		log.Debug().Str("photo", photo.ID).Msg("Dropped pending duplicate")
		return
	}

	s.photos = append(s.photos, photo)
	session.accepted++
	log.Debug().Str("session", session.id).Str("photo", photo.ID).Int("count", len(s.photos)).Msg("Photo selected")
	s.publishLocked()
}

func (s *SelectionService) publishLocked() {
	s.bus.Publish(domain.SelectionChangedEvent{Photos: s.photos.Clone()})
}
