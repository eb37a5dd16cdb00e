package catalog

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

// WatchDebounce coalesces bursts of file events into one reload
const WatchDebounce = 500 * time.Millisecond

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

type entry struct {
	photo  domain.Photo
	width  int
	height int
}

// DirectoryCatalog serves the images of a gallery directory.
// Files are listed by name; the ID is the slug of the file name.
type DirectoryCatalog struct {
	dir string

	mu      sync.RWMutex
	photos  []domain.Photo
	entries map[string]entry
}

// NewDirectoryCatalog scans dir once and returns the catalog
func NewDirectoryCatalog(dir string) (*DirectoryCatalog, error) {
	c := &DirectoryCatalog{dir: dir}
	if _, err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the scanned directory
func (c *DirectoryCatalog) Dir() string {
	return c.dir
}

// Reload rescans the directory and returns the number of photos found.
// Unreadable images are skipped.
func (c *DirectoryCatalog) Reload() (int, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read gallery directory: %w", err)
	}

	photos := make([]domain.Photo, 0, len(files))
	entries := make(map[string]entry, len(files))

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		path := filepath.Join(c.dir, name)
		width, height, err := decodeBounds(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable image")
			continue
		}

		id := domain.GenerateSlug(name)
		base := id
		for n := 1; ; n++ {
			if _, taken := entries[id]; !taken {
				break
			}
			id = fmt.Sprintf("%s-%d", base, n)
		}

		photo := domain.Photo{
			ID:     id,
			Title:  strings.TrimSuffix(name, filepath.Ext(name)),
			Source: path,
		}
		photos = append(photos, photo)
		entries[id] = entry{photo: photo, width: width, height: height}
	}

	c.mu.Lock()
	c.photos = photos
	c.entries = entries
	c.mu.Unlock()

	log.Debug().Str("dir", c.dir).Int("photos", len(photos)).Msg("Gallery scanned")
	return len(photos), nil
}

// List returns the photos in file name order
func (c *DirectoryCatalog) List(ctx context.Context) ([]domain.Photo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Photo, len(c.photos))
	copy(out, c.photos)
	return out, nil
}

// Get retrieves a photo by ID
func (c *DirectoryCatalog) Get(ctx context.Context, id string) (domain.Photo, error) {
	e, err := c.lookup(id)
	if err != nil {
		return domain.Photo{}, err
	}
	return e.photo, nil
}

// Bounds returns the size recorded at scan time
func (c *DirectoryCatalog) Bounds(ctx context.Context, photo domain.Photo) (int, int, error) {
	e, err := c.lookup(photo.ID)
	if err != nil {
		return 0, 0, err
	}
	return e.width, e.height, nil
}

// Decode reads and decodes the image file
func (c *DirectoryCatalog) Decode(ctx context.Context, photo domain.Photo) (image.Image, error) {
	e, err := c.lookup(photo.ID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(e.photo.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Exif reads camera metadata. Files without EXIF yield an empty result.
func (c *DirectoryCatalog) Exif(photo domain.Photo) (Exif, error) {
	e, err := c.lookup(photo.ID)
	if err != nil {
		return Exif{}, err
	}

	f, err := os.Open(e.photo.Source)
	if err != nil {
		return Exif{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	exifData, err := imagemeta.Decode(f)
	if err != nil {
		log.Debug().Err(err).Str("path", e.photo.Source).Msg("No EXIF metadata")
		return Exif{}, nil
	}

	return Exif{
		Make:  strings.TrimSpace(exifData.Make),
		Model: strings.TrimSpace(exifData.Model),
		Taken: exifData.DateTimeOriginal(),
	}, nil
}

// Watch reloads the catalog whenever the directory changes until ctx is
// done. onReload receives the new photo count.
func (c *DirectoryCatalog) Watch(ctx context.Context, onReload func(count int)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch gallery directory: %w", err)
	}

	go func() {
		defer watcher.Close()

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		doReload := func() {
			if ctx.Err() != nil {
				return
			}
			n, err := c.Reload()
			if err != nil {
				log.Error().Err(err).Str("dir", c.dir).Msg("Gallery reload failed")
				return
			}
			if onReload != nil {
				onReload(n)
			}
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				base := filepath.Base(event.Name)
				if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
					continue
				}
				if event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Write) ||
					event.Has(fsnotify.Remove) ||
					event.Has(fsnotify.Rename) {
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					debounceTimer = time.AfterFunc(WatchDebounce, doReload)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Gallery watcher error")

			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (c *DirectoryCatalog) lookup(id string) (entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
	}
	return e, nil
}

func decodeBounds(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
