package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
)

// ErrEmptyCollage is returned when there is nothing to save
var ErrEmptyCollage = errors.New("collage is empty")

// CollageService saves composites and reports on saved collages
type CollageService struct {
	repo ports.CollageRepository
	bus  eventbus.EventBus
	wg   sync.WaitGroup
}

// NewCollageService creates a collage service
func NewCollageService(repo ports.CollageRepository, bus eventbus.EventBus) *CollageService {
	return &CollageService{
		repo: repo,
		bus:  bus,
	}
}

// Save writes the composite synchronously
func (s *CollageService) Save(ctx context.Context, img image.Image, photos domain.Selection) (*domain.Collage, error) {
	if img == nil || len(photos) == 0 {
		return nil, ErrEmptyCollage
	}

	collage, err := s.repo.Save(ctx, img, photos.IDs())
	if err != nil {
		return nil, fmt.Errorf("failed to save collage: %w", err)
	}

	log.Info().Str("file", collage.Filename).Int("photos", len(photos)).Msg("Collage saved")
	return collage, nil
}

// SaveAsync saves on its own goroutine and reports the outcome on the bus.
// Nothing is published once ctx is done.
func (s *CollageService) SaveAsync(ctx context.Context, img image.Image, photos domain.Selection) {
	photos = photos.Clone()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		collage, err := s.Save(ctx, img, photos)
		if ctx.Err() != nil {
			log.Debug().Msg("Save finished after teardown, result discarded")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Collage save failed")
			s.bus.Publish(domain.CollageSaveFailedEvent{Message: err.Error(), Err: err})
			return
		}
		s.bus.Publish(domain.CollageSavedEvent{Collage: *collage})
	}()
}

// Wait blocks until every SaveAsync call has finished
func (s *CollageService) Wait() {
	s.wg.Wait()
}

// List returns saved collages, newest first
func (s *CollageService) List(ctx context.Context) ([]domain.Collage, error) {
	collages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collages: %w", err)
	}

	sort.SliceStable(collages, func(i, j int) bool {
		return collages[i].SavedAt.After(collages[j].SavedAt)
	})
	return collages, nil
}

// Usage counts how many saved collages contain each photo.
// Most used first, ties by photo ID.
func (s *CollageService) Usage(ctx context.Context) ([]domain.PhotoUsage, error) {
	collages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collages: %w", err)
	}

	counts := make(map[string]int)
	for _, c := range collages {
		for _, id := range c.PhotoIDs {
			counts[id]++
		}
	}

	usage := make([]domain.PhotoUsage, 0, len(counts))
	for id, n := range counts {
		usage = append(usage, domain.PhotoUsage{PhotoID: id, Count: n})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].PhotoID < usage[j].PhotoID
	})
	return usage, nil
}
