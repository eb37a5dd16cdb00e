package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
)

// CollagesDir is the storage directory relative to the filesystem root
const CollagesDir = "collages"

const manifestName = ".manifest.json"

// FileCollageRepository writes collages as PNG files and keeps a JSON
// manifest of everything it saved.
type FileCollageRepository struct {
	fs           billy.Filesystem
	dir          string
	manifestPath string
	now          func() time.Time

	mu     sync.Mutex
	loaded bool
	cache  map[string]domain.Collage
}

// NewFileCollageRepository stores collages under CollagesDir of fs
func NewFileCollageRepository(fs billy.Filesystem) *FileCollageRepository {
	return &FileCollageRepository{
		fs:           fs,
		dir:          CollagesDir,
		manifestPath: path.Join(CollagesDir, manifestName),
		now:          time.Now,
		cache:        make(map[string]domain.Collage),
	}
}

// Save encodes img as PNG under "<unix-millis>.png".
// A name collision gets a numeric suffix ("<millis>-1.png").
func (r *FileCollageRepository) Save(ctx context.Context, img image.Image, photoIDs []string) (*domain.Collage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(); err != nil {
		return nil, err
	}
	if err := r.fs.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collages directory: %w", err)
	}

	savedAt := r.now()
	base := fmt.Sprintf("%d", savedAt.UnixMilli())
	filename := base + ".png"

	var f billy.File
	for counter := 1; ; counter++ {
		var err error
		f, err = r.fs.OpenFile(path.Join(r.dir, filename), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create %s: %w", filename, err)
		}
		filename = fmt.Sprintf("%s-%d.png", base, counter)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		r.fs.Remove(path.Join(r.dir, filename))
		return nil, fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", filename, err)
	}

	bounds := img.Bounds()
	collage := domain.Collage{
		Filename: filename,
		Path:     path.Join(r.dir, filename),
		PhotoIDs: append([]string(nil), photoIDs...),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Hash:     hex.EncodeToString(sum[:]),
		SavedAt:  savedAt,
	}

	// An unrecorded PNG would be invisible to List, so roll it back
	r.cache[filename] = collage
	if err := r.flushLocked(); err != nil {
		delete(r.cache, filename)
		r.fs.Remove(path.Join(r.dir, filename))
		return nil, err
	}
	return &collage, nil
}

// List returns every recorded collage in no particular order
func (r *FileCollageRepository) List(ctx context.Context) ([]domain.Collage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(); err != nil {
		return nil, err
	}

	out := make([]domain.Collage, 0, len(r.cache))
	for _, c := range r.cache {
		out = append(out, c)
	}
	return out, nil
}

// Open returns the stored PNG of a collage
func (r *FileCollageRepository) Open(filename string) (billy.File, error) {
	return r.fs.Open(path.Join(r.dir, path.Base(filename)))
}

// loadLocked reads the manifest once
func (r *FileCollageRepository) loadLocked() error {
	if r.loaded {
		return nil
	}

	data, err := util.ReadFile(r.fs, r.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	if err := json.Unmarshal(data, &r.cache); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	r.loaded = true
	return nil
}

// flushLocked writes the manifest via a temp file and rename
func (r *FileCollageRepository) flushLocked() error {
	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.manifestPath + ".tmp"
	if err := util.WriteFile(r.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := r.fs.Rename(tmp, r.manifestPath); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}
