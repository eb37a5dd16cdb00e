package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved collages",
	Long:    `List saved collages, newest first.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most n collages (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	collages, err := services.NewCollageService(collageRepo, nil).List(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list collages"))
		return err
	}

	if len(collages) == 0 {
		fmt.Println(ui.FormatWarning("No collages saved yet"))
		fmt.Println(ui.FormatInfo("Open the studio with: collage"))
		return nil
	}

	total := len(collages)
	if listLimit > 0 && listLimit < total {
		collages = collages[:listLimit]
	}

	fmt.Println(ui.FormatTitle("Collages"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "File", Width: 20, Align: "left"},
		{Header: "Saved", Width: 12, Align: "left"},
		{Header: "Size", Width: 10, Align: "right"},
		{Header: "Photos", Width: 40, MaxWidth: 40, Align: "left"},
	})

	for _, c := range collages {
		table.AddRow([]string{
			ui.FormatBold(c.Filename),
			formatTimeAgo(c.SavedAt),
			fmt.Sprintf("%dx%d", c.Width, c.Height),
			strings.Join(c.PhotoIDs, ", "),
		})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d collages in %s", total, appVault.CollagesPath)))

	return nil
}
