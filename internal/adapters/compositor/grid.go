package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// ErrNoImages is returned when Compose is called without input
var ErrNoImages = errors.New("no images to compose")

// Layout controls how cells are arranged on the canvas
type Layout string

const (
	LayoutGrid       Layout = "grid"
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// Default cell size
const (
	DefaultCellWidth  = 480
	DefaultCellHeight = 320
)

// ParseLayout validates a layout name
func ParseLayout(name string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(name))); l {
	case LayoutGrid, LayoutHorizontal, LayoutVertical:
		return l, nil
	case "":
		return LayoutGrid, nil
	default:
		return "", fmt.Errorf("unknown layout %q (expected grid, horizontal or vertical)", name)
	}
}

// Options configures a Compositor
type Options struct {
	Layout     Layout
	CellWidth  int
	CellHeight int
	Background color.Color
}

// Compositor places every image in a fixed-size cell and scales it to fit
type Compositor struct {
	opts Options
}

// New creates a compositor, filling in defaults for zero values
func New(opts Options) *Compositor {
	if opts.Layout == "" {
		opts.Layout = LayoutGrid
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = DefaultCellHeight
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	return &Compositor{opts: opts}
}

// Grid returns the number of columns and rows used for n images
func (c *Compositor) Grid(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	switch c.opts.Layout {
	case LayoutHorizontal:
		return n, 1
	case LayoutVertical:
		return 1, n
	default:
		cols = 2
		if n == 1 {
			cols = 1
		}
		return cols, (n + cols - 1) / cols
	}
}

// Compose draws the images in order onto one canvas of
// cols*CellWidth x rows*CellHeight pixels
func (c *Compositor) Compose(images []image.Image) (image.Image, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	cols, rows := c.Grid(len(images))
	cw, ch := c.opts.CellWidth, c.opts.CellHeight
	canvas := image.NewRGBA(image.Rect(0, 0, cols*cw, rows*ch))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c.opts.Background), image.Point{}, draw.Src)

	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("image %d is nil", i)
		}
		cell := image.Rect(0, 0, cw, ch).Add(image.Pt((i%cols)*cw, (i/cols)*ch))
		src := img.Bounds()
		w, h := fitDimensions(src.Dx(), src.Dy(), cw, ch)
		offset := image.Pt(cell.Min.X+(cw-w)/2, cell.Min.Y+(ch-h)/2)
		draw.CatmullRom.Scale(canvas, image.Rect(0, 0, w, h).Add(offset), img, src, draw.Over, nil)
	}

	log.Debug().
		Int("images", len(images)).
		Str("layout", string(c.opts.Layout)).
		Int("width", canvas.Bounds().Dx()).
		Int("height", canvas.Bounds().Dy()).
		Msg("Composite rendered")

	return canvas, nil
}

// Thumbnail downsizes img so neither side exceeds maxDimension.
// Images already small enough are returned unchanged.
func (c *Compositor) Thumbnail(img image.Image, maxDimension int) image.Image {
	return Thumbnail(img, maxDimension)
}

// Thumbnail downsizes img so neither side exceeds maxDimension
func Thumbnail(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	origWidth, origHeight := bounds.Dx(), bounds.Dy()
	if maxDimension <= 0 || (origWidth <= maxDimension && origHeight <= maxDimension) {
		return img
	}

	newWidth, newHeight := calculateThumbnailDimensions(origWidth, origHeight, maxDimension)
	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// calculateThumbnailDimensions calculates new dimensions maintaining aspect ratio.
func calculateThumbnailDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return newWidth, max(newHeight, 1)
	}

	newHeight := maxDimension
	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return max(newWidth, 1), newHeight
}

// fitDimensions scales width x height to the largest size that fits the box
func fitDimensions(width, height, boxWidth, boxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	scale := min(float64(boxWidth)/float64(width), float64(boxHeight)/float64(height))
	w := max(int(float64(width)*scale), 1)
	h := max(int(float64(height)*scale), 1)
	return min(w, boxWidth), min(h, boxHeight)
}

// ParseHexColor parses "#rrggbb" or "#rgb"
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
