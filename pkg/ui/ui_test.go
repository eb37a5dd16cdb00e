package ui

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestFitCells(t *testing.T) {
	tests := []struct {
		name                       string
		width, height              int
		maxCols, maxRows           int
		expectedCols, expectedRows int
	}{
		{"wide image limited by columns", 400, 100, 80, 40, 80, 10},
		{"tall image limited by rows", 100, 400, 80, 20, 10, 20},
		{"square", 100, 100, 40, 40, 40, 20},
		{"empty image", 0, 10, 80, 24, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := FitCells(tt.width, tt.height, tt.maxCols, tt.maxRows)
			if cols != tt.expectedCols || rows != tt.expectedRows {
				t.Errorf("FitCells() = %dx%d, want %dx%d", cols, rows, tt.expectedCols, tt.expectedRows)
			}
		})
	}
}

func TestSampleCells(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			img.SetRGBA(x, y, red)
		}
		for y := 2; y < 4; y++ {
			img.SetRGBA(x, y, blue)
		}
	}

	cells := SampleCells(img, 4, 2)
	if len(cells) != 2 || len(cells[0]) != 4 {
		t.Fatalf("expected 2 rows of 4 cells, got %d rows", len(cells))
	}
	if cells[0][0].Top != red || cells[0][0].Bottom != red {
		t.Errorf("expected first row to be red, got %+v", cells[0][0])
	}
	if cells[1][3].Top != blue || cells[1][3].Bottom != blue {
		t.Errorf("expected second row to be blue, got %+v", cells[1][3])
	}

	if SampleCells(nil, 4, 2) != nil {
		t.Error("expected nil cells for nil image")
	}
}

func TestRenderHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	out := RenderHalfBlocks(img, 8, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
	if strings.Count(out, HalfBlock) != 32 {
		t.Errorf("expected 32 half blocks, got %d", strings.Count(out, HalfBlock))
	}

	if RenderHalfBlocks(nil, 8, 8) != "" {
		t.Error("expected empty output for nil image")
	}
}

func TestHexColor(t *testing.T) {
	if got := HexColor(color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}); got != "#1e1e2e" {
		t.Errorf("HexColor() = %q, want #1e1e2e", got)
	}
}

func TestTable_Render(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "ID", Width: 4},
		{Header: "TITLE", MaxWidth: 6},
		{Header: "SIZE", Align: "right"},
	})
	table.AddRow([]string{"ocean", "Ocean at night", "480x320"})
	table.AddRow([]string{"dusk", "Dusk", "480x320"})

	out := table.Render()
	if !strings.Contains(out, "Ocean…") {
		t.Errorf("expected truncated title, got:\n%s", out)
	}
	if strings.Contains(out, "Ocean at night") {
		t.Errorf("title should have been truncated, got:\n%s", out)
	}
	if !strings.Contains(out, "dusk") {
		t.Errorf("expected second row, got:\n%s", out)
	}

	if NewTable(nil).Render() != "" {
		t.Error("expected empty render for table without columns")
	}
}

func TestPadString(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		align    string
		expected string
	}{
		{"ab", 4, "left", "ab  "},
		{"ab", 4, "right", "  ab"},
		{"ab", 5, "center", " ab  "},
		{"abcdef", 3, "left", "abcdef"},
		{"é", 3, "left", "é  "},
	}

	for _, tt := range tests {
		if got := padString(tt.input, tt.width, tt.align); got != tt.expected {
			t.Errorf("padString(%q, %d, %q) = %q, want %q", tt.input, tt.width, tt.align, got, tt.expected)
		}
	}
}

func TestFormatButton(t *testing.T) {
	if !strings.Contains(FormatButton("save", true), "save") {
		t.Error("enabled button should contain its label")
	}
	if !strings.Contains(FormatButton("save", false), "save") {
		t.Error("disabled button should contain its label")
	}
}
