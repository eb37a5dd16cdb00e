package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

// --- MockCatalog ---

type mockPhoto struct {
	photo  domain.Photo
	width  int
	height int
}

// MockCatalog is a mock implementation of the Catalog interface for testing
type MockCatalog struct {
	mu        sync.RWMutex
	order     []string
	photos    map[string]mockPhoto
	decodeErr map[string]error
}

// NewMockCatalog creates a new, empty mock catalog
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		photos:    make(map[string]mockPhoto),
		decodeErr: make(map[string]error),
	}
}

// Add registers a photo with the given pixel size
func (m *MockCatalog) Add(id string, width, height int) domain.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := domain.Photo{ID: id, Title: id}
	if _, ok := m.photos[id]; !ok {
		m.order = append(m.order, id)
	}
	m.photos[id] = mockPhoto{photo: p, width: width, height: height}
	return p
}

// FailDecode makes Decode return err for the given photo
func (m *MockCatalog) FailDecode(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeErr[id] = err
}

// List returns all photos in insertion order
func (m *MockCatalog) List(ctx context.Context) ([]domain.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Photo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.photos[id].photo)
	}
	return out, nil
}

// Get retrieves a photo by ID
func (m *MockCatalog) Get(ctx context.Context, id string) (domain.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.photos[id]
	if !ok {
		return domain.Photo{}, fmt.Errorf("photo not found: %s", id)
	}
	return p.photo, nil
}

// Bounds returns the registered size of a photo
func (m *MockCatalog) Bounds(ctx context.Context, photo domain.Photo) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.photos[photo.ID]
	if !ok {
		return 0, 0, fmt.Errorf("photo not found: %s", photo.ID)
	}
	return p.width, p.height, nil
}

// Decode returns a solid image of the registered size
func (m *MockCatalog) Decode(ctx context.Context, photo domain.Photo) (image.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.decodeErr[photo.ID]; ok {
		return nil, err
	}
	p, ok := m.photos[photo.ID]
	if !ok {
		return nil, fmt.Errorf("photo not found: %s", photo.ID)
	}
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

// --- MockCompositor ---

// MockCompositor stacks images horizontally and records every call
type MockCompositor struct {
	mu    sync.Mutex
	calls [][]image.Image
	Err   error
}

// NewMockCompositor creates a new mock compositor
func NewMockCompositor() *MockCompositor {
	return &MockCompositor{}
}

// Compose returns an image as wide as all inputs together
func (m *MockCompositor) Compose(images []image.Image) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, images)
	if m.Err != nil {
		return nil, m.Err
	}

	width, height := 0, 0
	for _, img := range images {
		b := img.Bounds()
		width += b.Dx()
		if b.Dy() > height {
			height = b.Dy()
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	out.Set(0, 0, color.White)
	return out, nil
}

// Thumbnail returns a blank image whose longer side is maxDimension
func (m *MockCompositor) Thumbnail(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h && w > maxDimension {
		h = h * maxDimension / w
		w = maxDimension
	} else if h > w && h > maxDimension {
		w = w * maxDimension / h
		h = maxDimension
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Calls returns the number of Compose invocations
func (m *MockCompositor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- MockCollageRepository ---

// MockCollageRepository is an in-memory CollageRepository
type MockCollageRepository struct {
	mu       sync.Mutex
	collages []domain.Collage
	Err      error
	Delay    time.Duration
}

// NewMockCollageRepository creates a new mock collage repository
func NewMockCollageRepository() *MockCollageRepository {
	return &MockCollageRepository{}
}

// Save records the collage without touching the filesystem
func (m *MockCollageRepository) Save(ctx context.Context, img image.Image, photoIDs []string) (*domain.Collage, error) {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	b := img.Bounds()
	c := domain.Collage{
		Filename: fmt.Sprintf("%d.png", len(m.collages)+1),
		PhotoIDs: append([]string(nil), photoIDs...),
		Width:    b.Dx(),
		Height:   b.Dy(),
		SavedAt:  time.Now(),
	}
	c.Path = "collages/" + c.Filename
	m.collages = append(m.collages, c)
	return &c, nil
}

// List returns all saved collages
func (m *MockCollageRepository) List(ctx context.Context) ([]domain.Collage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Collage, len(m.collages))
	copy(out, m.collages)
	return out, nil
}

// Put seeds the repository with an existing record
func (m *MockCollageRepository) Put(c domain.Collage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collages = append(m.collages, c)
}
