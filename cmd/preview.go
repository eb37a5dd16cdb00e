package cmd

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show a saved collage in the terminal",
	Long: `Show a saved collage full-screen using half-block characters.

Without an argument the newest collage is shown. The argument may be a
collage file name (see 'collage list') or a path to any PNG file.

Use --open to show it in the system image viewer instead.

Keys:
  ←/→ or p/n  Previous / next collage
  q, Esc      Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

var previewExternal bool

func init() {
	previewCmd.Flags().BoolVarP(&previewExternal, "open", "o", false, "Open in the system image viewer")
}

// collageViewer renders saved collages on a tcell screen
type collageViewer struct {
	screen   tcell.Screen
	collages []domain.Collage
	index    int
	image    image.Image
	title    string
	err      error
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	collages, err := services.NewCollageService(collageRepo, nil).List(ctx)
	if err != nil {
		return err
	}

	v := &collageViewer{collages: collages}

	switch {
	case len(args) == 1 && fileExists(args[0]):
		img, err := loadPNG(args[0])
		if err != nil {
			return err
		}
		v.image = img
		v.title = args[0]
		v.index = -1
	case len(args) == 1:
		v.index = findCollage(collages, args[0])
		if v.index < 0 {
			return fmt.Errorf("collage not found: %s", args[0])
		}
		v.load()
	case len(collages) == 0:
		fmt.Println(ui.FormatWarning("No collages saved yet"))
		return nil
	default:
		v.load()
	}

	if previewExternal {
		path := v.title
		if v.index >= 0 {
			path = appVault.GetCollagePath(v.title)
		}
		return OpenFile(path)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	v.screen = screen

	return v.run()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func findCollage(collages []domain.Collage, filename string) int {
	for i, c := range collages {
		if c.Filename == filename {
			return i
		}
	}
	return -1
}

// load decodes the collage at the current index
func (v *collageViewer) load() {
	c := v.collages[v.index]
	v.title = c.Filename
	v.image = nil
	v.err = nil

	f, err := collageRepo.Open(c.Filename)
	if err != nil {
		v.err = err
		return
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		v.err = fmt.Errorf("failed to decode %s: %w", c.Filename, err)
		return
	}
	v.image = img
}

func (v *collageViewer) run() error {
	defer v.screen.Fini()

	v.draw()
	for {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.draw()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return nil
			}
			if v.step(ev) {
				v.draw()
			}
		}
	}
}

// step moves between collages, returning true when the view changed
func (v *collageViewer) step(ev *tcell.EventKey) bool {
	if v.index < 0 || len(v.collages) < 2 {
		return false
	}

	switch {
	case ev.Key() == tcell.KeyRight || ev.Rune() == 'n':
		v.index = (v.index + 1) % len(v.collages)
	case ev.Key() == tcell.KeyLeft || ev.Rune() == 'p':
		v.index = (v.index - 1 + len(v.collages)) % len(v.collages)
	default:
		return false
	}
	v.load()
	return true
}

func (v *collageViewer) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()

	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorPurple)
	mutedStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	title := v.title
	if v.index >= 0 {
		title = fmt.Sprintf("%s  (%d/%d)", v.title, v.index+1, len(v.collages))
	}
	v.drawText(0, 0, title, titleStyle)

	switch {
	case v.err != nil:
		v.drawText(0, 2, v.err.Error(), tcell.StyleDefault.Foreground(tcell.ColorRed))
	case v.image != nil:
		v.drawImage(0, 2, width, height-4)
	}

	v.drawText(0, height-1, "←/→ switch  q quit", mutedStyle)
	v.screen.Show()
}

// drawImage paints the image as half-block cells inside the given box
func (v *collageViewer) drawImage(x0, y0, maxCols, maxRows int) {
	b := v.image.Bounds()
	cols, rows := ui.FitCells(b.Dx(), b.Dy(), maxCols, maxRows)
	cells := ui.SampleCells(v.image, cols, rows)

	offset := (maxCols - cols) / 2
	for y, line := range cells {
		for x, c := range line {
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(c.Top.R), int32(c.Top.G), int32(c.Top.B))).
				Background(tcell.NewRGBColor(int32(c.Bottom.R), int32(c.Bottom.G), int32(c.Bottom.B)))
			v.screen.SetContent(x0+offset+x, y0+y, []rune(ui.HalfBlock)[0], nil, style)
		}
	}
}

func (v *collageViewer) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}
