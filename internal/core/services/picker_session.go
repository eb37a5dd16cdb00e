package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

// PickerSession is one opening of the picking surface.
// Each Tap is a raw selection event; Close completes the stream.
type PickerSession struct {
	id  string
	svc *SelectionService

	// Guarded by svc.mu
	done       bool
	gateClosed bool
	pending    *domain.Photo
	idle       chan struct{} // closed while nothing is pending
	seq        uint64
	timer      *time.Timer
	taps       int
	accepted   int
}

func newPickerSession(svc *SelectionService) *PickerSession {
	idle := make(chan struct{})
	close(idle)
	return &PickerSession{
		id:   uuid.NewString(),
		svc:  svc,
		idle: idle,
	}
}

// ID returns the session identifier used in events and logs
func (s *PickerSession) ID() string {
	return s.id
}

// Tap submits a photo to the selection pipeline.
// Taps after Close or after the service was torn down are ignored.
func (s *PickerSession) Tap(photo domain.Photo) {
	s.svc.observe(s, photo)
}

// Close completes the session. Any pending photo is flushed first,
// then the thumbnail-ready signal fires. Closing twice is a no-op.
func (s *PickerSession) Close() {
	s.svc.complete(s)
}

// Settle blocks until no tap of this session is waiting in the debounce
// window, so a following Snapshot includes it.
func (s *PickerSession) Settle(ctx context.Context) error {
	s.svc.mu.Lock()
	idle := s.idle
	s.svc.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns how many taps were observed and how many were appended
func (s *PickerSession) Stats() (taps, accepted int) {
	s.svc.mu.Lock()
	defer s.svc.mu.Unlock()
	return s.taps, s.accepted
}

// holdLocked makes photo the pending one. Caller holds svc.mu.
func (s *PickerSession) holdLocked(photo domain.Photo) {
	if s.pending == nil {
		s.idle = make(chan struct{})
	}
	s.pending = &photo
}

// takeLocked removes and returns the pending photo. Caller holds svc.mu.
func (s *PickerSession) takeLocked() (domain.Photo, bool) {
	if s.pending == nil {
		return domain.Photo{}, false
	}
	photo := *s.pending
	s.pending = nil
	close(s.idle)
	return photo, true
}

// stopTimer invalidates any scheduled debounce. Caller holds svc.mu.
func (s *PickerSession) stopTimer() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
