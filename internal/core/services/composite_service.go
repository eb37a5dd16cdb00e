package services

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
)

// DefaultThumbnailDimension bounds the longer side of the thumbnail
const DefaultThumbnailDimension = 320

// CompositeService keeps the displayed composite in sync with the selection
// and refreshes the thumbnail whenever a picker session completes.
type CompositeService struct {
	catalog    ports.Catalog
	compositor ports.Compositor
	bus        eventbus.EventBus
	thumbMax   int

	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	photos      domain.Selection
	current     image.Image
	lastErr     error
}

// NewCompositeService creates a composite service
func NewCompositeService(catalog ports.Catalog, compositor ports.Compositor, bus eventbus.EventBus, thumbMax int) *CompositeService {
	if thumbMax <= 0 {
		thumbMax = DefaultThumbnailDimension
	}
	return &CompositeService{
		catalog:    catalog,
		compositor: compositor,
		bus:        bus,
		thumbMax:   thumbMax,
	}
}

// Start subscribes to selection and thumbnail events
func (s *CompositeService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = s.bus.SubscribeMany(
		[]eventbus.EventType{domain.EventSelectionChanged, domain.EventThumbnailStatus},
		s.handle,
	)
}

// Stop detaches from the bus and cancels in-flight decoding
func (s *CompositeService) Stop() {
	s.mu.Lock()
	unsubscribe, cancel := s.unsubscribe, s.cancel
	s.unsubscribe, s.cancel = nil, nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

// Current returns the displayed composite and the selection it shows.
// The image is nil for an empty selection or after a failed render.
func (s *CompositeService) Current() (image.Image, domain.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.photos.Clone(), s.lastErr
}

// Render decodes every photo of the selection and composes them
func (s *CompositeService) Render(ctx context.Context, photos domain.Selection) (image.Image, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	images := make([]image.Image, 0, len(photos))
	for _, p := range photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := s.catalog.Decode(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", p.ID, err)
		}
		images = append(images, img)
	}

	composite, err := s.compositor.Compose(images)
	if err != nil {
		return nil, fmt.Errorf("failed to compose collage: %w", err)
	}
	return composite, nil
}

func (s *CompositeService) handle(event domain.DomainEvent) {
	switch e := event.(type) {
	case domain.SelectionChangedEvent:
		s.onSelectionChanged(e)
	case domain.ThumbnailStatusEvent:
		s.onThumbnailStatus(e)
	}
}

func (s *CompositeService) onSelectionChanged(e domain.SelectionChangedEvent) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	img, err := s.Render(ctx, e.Photos)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Error().Err(err).Str("photos", e.Photos.String()).Msg("Composite render failed")
	}

	s.mu.Lock()
	s.photos = e.Photos.Clone()
	s.current = img
	s.lastErr = err
	s.mu.Unlock()

	s.bus.Publish(domain.CompositeUpdatedEvent{Photos: e.Photos.Clone(), Image: img, Err: err})
}

func (s *CompositeService) onThumbnailStatus(e domain.ThumbnailStatusEvent) {
	if e.Status != domain.ThumbnailReady {
		return
	}

	s.mu.RLock()
	current, lastErr, ctx := s.current, s.lastErr, s.ctx
	s.mu.RUnlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	if lastErr != nil {
		s.bus.Publish(domain.ThumbnailUpdatedEvent{Status: domain.ThumbnailError})
		return
	}

	var thumb image.Image
	if current != nil {
		thumb = s.compositor.Thumbnail(current, s.thumbMax)
	}
	s.bus.Publish(domain.ThumbnailUpdatedEvent{Status: domain.ThumbnailReady, Image: thumb})
}
