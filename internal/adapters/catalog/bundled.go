package catalog

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

const (
	swatchLong  = 480
	swatchShort = 320
)

type swatch struct {
	id       string
	title    string
	portrait bool
	from     color.RGBA
	to       color.RGBA
}

// The built-in gallery. Two portrait entries exercise the orientation gate.
var bundledSwatches = []swatch{
	{"sunrise", "Sunrise", false, rgb(0xff, 0x9a, 0x3c), rgb(0xff, 0xe0, 0x82)},
	{"ocean", "Ocean", false, rgb(0x0b, 0x3d, 0x91), rgb(0x4f, 0xc3, 0xf7)},
	{"forest", "Forest", false, rgb(0x1b, 0x5e, 0x20), rgb(0x8b, 0xc3, 0x4a)},
	{"desert", "Desert", false, rgb(0xc2, 0x8b, 0x3a), rgb(0xf4, 0xd0, 0x8a)},
	{"glacier", "Glacier", false, rgb(0x9e, 0xd8, 0xe8), rgb(0xf5, 0xfb, 0xff)},
	{"lavender", "Lavender", false, rgb(0x5e, 0x35, 0xb1), rgb(0xce, 0x93, 0xd8)},
	{"dusk", "Dusk", false, rgb(0x31, 0x1b, 0x92), rgb(0xf0, 0x62, 0x92)},
	{"meadow", "Meadow", false, rgb(0x55, 0x8b, 0x2f), rgb(0xdc, 0xe7, 0x75)},
	{"lighthouse", "Lighthouse", true, rgb(0xb7, 0x1c, 0x1c), rgb(0xf5, 0xf5, 0xf5)},
	{"waterfall", "Waterfall", true, rgb(0x26, 0x32, 0x38), rgb(0x80, 0xde, 0xea)},
}

// BundledCatalog is the fixed gallery shipped with the binary.
// Rasters are generated on first use and cached.
type BundledCatalog struct {
	mu       sync.Mutex
	byID     map[string]swatch
	rendered map[string]image.Image
}

// NewBundledCatalog creates the built-in catalog
func NewBundledCatalog() *BundledCatalog {
	byID := make(map[string]swatch, len(bundledSwatches))
	for _, s := range bundledSwatches {
		byID[s.id] = s
	}
	return &BundledCatalog{
		byID:     byID,
		rendered: make(map[string]image.Image),
	}
}

// List returns the bundled photos in gallery order
func (c *BundledCatalog) List(ctx context.Context) ([]domain.Photo, error) {
	photos := make([]domain.Photo, 0, len(bundledSwatches))
	for _, s := range bundledSwatches {
		photos = append(photos, domain.Photo{ID: s.id, Title: s.title})
	}
	return photos, nil
}

// Get retrieves a bundled photo by ID
func (c *BundledCatalog) Get(ctx context.Context, id string) (domain.Photo, error) {
	s, ok := c.byID[id]
	if !ok {
		return domain.Photo{}, fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
	}
	return domain.Photo{ID: s.id, Title: s.title}, nil
}

// Bounds returns the size of a bundled photo
func (c *BundledCatalog) Bounds(ctx context.Context, photo domain.Photo) (int, int, error) {
	s, ok := c.byID[photo.ID]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrPhotoNotFound, photo.ID)
	}
	w, h := s.size()
	return w, h, nil
}

// Decode renders the bundled photo
func (c *BundledCatalog) Decode(ctx context.Context, photo domain.Photo) (image.Image, error) {
	s, ok := c.byID[photo.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, photo.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.rendered[s.id]; ok {
		return img, nil
	}
	img := s.render()
	c.rendered[s.id] = img
	return img, nil
}

func (s swatch) size() (int, int) {
	if s.portrait {
		return swatchShort, swatchLong
	}
	return swatchLong, swatchShort
}

// render draws a diagonal gradient with a horizon band
func (s swatch) render() image.Image {
	w, h := s.size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	span := w + h - 2
	horizon := h * 2 / 3

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x+y) / float64(span)
			c := lerp(s.from, s.to, t)
			if y > horizon {
				c = lerp(c, color.RGBA{A: 0xff}, 0.25)
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
