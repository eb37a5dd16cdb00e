package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"gallery", "photos"},
	Short:   "List the photos available for collages",
	Long: `List every photo of the current gallery with its size and orientation.

Photos from a gallery directory also show the camera and capture date
from their EXIF data when present.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	photos, err := photoCatalog.List(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list gallery"))
		return err
	}

	if len(photos) == 0 {
		fmt.Println(ui.FormatWarning("No photos found"))
		if directoryCatalog != nil {
			fmt.Println(ui.FormatInfo("Add JPEG, PNG, WebP or BMP files to " + directoryCatalog.Dir()))
		}
		return nil
	}

	source := "bundled gallery"
	if directoryCatalog != nil {
		source = directoryCatalog.Dir()
	}
	fmt.Println(ui.FormatTitle(fmt.Sprintf("%s Photos (%s)", ui.IconPhoto, source)))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "ID", Width: 20, MaxWidth: 20, Align: "left"},
		{Header: "Title", Width: 24, MaxWidth: 24, Align: "left"},
		{Header: "Size", Width: 10, Align: "right"},
		{Header: "Orientation", Width: 11, Align: "left"},
		{Header: "Camera", Width: 20, MaxWidth: 20, Align: "left"},
		{Header: "Taken", Width: 10, Align: "left"},
	})

	landscape := 0
	for _, p := range photos {
		w, h, err := photoCatalog.Bounds(ctx, p)
		if err != nil {
			table.AddRow([]string{p.ID, p.Title, "?", ui.FormatError("unreadable"), "", ""})
			continue
		}
		if domain.IsLandscape(w, h) {
			landscape++
		}

		camera, taken := "", ""
		if directoryCatalog != nil {
			if exif, err := directoryCatalog.Exif(p); err == nil {
				camera = exif.Camera()
				if !exif.Taken.IsZero() {
					taken = exif.Taken.Format("2006-01-02")
				}
			}
		}

		table.AddRow([]string{
			p.ID,
			p.Title,
			fmt.Sprintf("%dx%d", w, h),
			domain.Orientation(w, h),
			camera,
			taken,
		})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d photos, %d landscape", len(photos), landscape)))

	return nil
}
