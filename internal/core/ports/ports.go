package ports

import (
	"context"
	"image"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

// Catalog defines the port for the read-only photo gallery
type Catalog interface {
	// List returns all available photos in display order
	List(ctx context.Context) ([]domain.Photo, error)

	// Get retrieves a photo by ID
	Get(ctx context.Context, id string) (domain.Photo, error)

	// Bounds returns the pixel size of a photo without decoding it fully
	Bounds(ctx context.Context, photo domain.Photo) (width, height int, err error)

	// Decode returns the raster of a photo
	Decode(ctx context.Context, photo domain.Photo) (image.Image, error)
}

// Compositor defines the port for combining rasters into one image
type Compositor interface {
	// Compose concatenates the images in order into a single image
	Compose(images []image.Image) (image.Image, error)

	// Thumbnail scales an image so its longer side is at most maxDimension
	Thumbnail(img image.Image, maxDimension int) image.Image
}

// CollageRepository defines the port for collage persistence
type CollageRepository interface {
	// Save writes the composite as PNG under a unique name and records it
	Save(ctx context.Context, img image.Image, photoIDs []string) (*domain.Collage, error)

	// List returns all recorded collages
	List(ctx context.Context) ([]domain.Collage, error)
}
