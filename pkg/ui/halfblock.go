package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// HalfBlock is the glyph used to draw two pixels per terminal cell
const HalfBlock = "▀"

// Cell is one terminal cell: the upper pixel is drawn as foreground,
// the lower one as background.
type Cell struct {
	Top    color.RGBA
	Bottom color.RGBA
}

// FitCells returns the largest cols x rows that keeps the aspect ratio of
// a width x height image. Each cell covers one pixel column and two rows.
func FitCells(width, height, maxCols, maxRows int) (cols, rows int) {
	if width <= 0 || height <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}

	cols = maxCols
	rows = (height*cols/width + 1) / 2
	if rows > maxRows {
		rows = maxRows
		cols = width * rows * 2 / height
	}
	return max(cols, 1), max(rows, 1)
}

// SampleCells scales img down to cols x rows half-block cells
func SampleCells(img image.Image, cols, rows int) [][]Cell {
	if img == nil || cols <= 0 || rows <= 0 {
		return nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	cells := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		cells[y] = make([]Cell, cols)
		for x := 0; x < cols; x++ {
			cells[y][x] = Cell{
				Top:    scaled.RGBAAt(x, y*2),
				Bottom: scaled.RGBAAt(x, y*2+1),
			}
		}
	}
	return cells
}

// RenderHalfBlocks draws img into at most maxCols x maxRows cells
func RenderHalfBlocks(img image.Image, maxCols, maxRows int) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	cols, rows := FitCells(b.Dx(), b.Dy(), maxCols, maxRows)
	cells := SampleCells(img, cols, rows)

	var sb strings.Builder
	for y, line := range cells {
		for _, c := range line {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(HexColor(c.Top))).
				Background(lipgloss.Color(HexColor(c.Bottom)))
			sb.WriteString(style.Render(HalfBlock))
		}
		if y < len(cells)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// HexColor formats c as "#rrggbb"
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
