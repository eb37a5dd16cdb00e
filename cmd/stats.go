package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

var statsHTML string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collage statistics",
	Long: `Analyze saved collages and display useful statistics.

Includes:
  - Number of collages and photos used
  - Most used photos

Use --html to write the photo usage as an interactive bar chart.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsHTML, "html", "", "Write a usage bar chart to this HTML file")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	svc := services.NewCollageService(collageRepo, nil)

	collages, err := svc.List(ctx)
	if err != nil {
		return err
	}
	usage, err := svc.Usage(ctx)
	if err != nil {
		return err
	}

	fmt.Println(ui.FormatRocket("Analyzing collages..."))
	fmt.Println()

	if len(collages) == 0 {
		fmt.Println(ui.FormatWarning("No collages saved yet"))
		return nil
	}

	totalPhotos := 0
	for _, c := range collages {
		totalPhotos += len(c.PhotoIDs)
	}

	fmt.Println(ui.RenderKeyValue("Collages", fmt.Sprintf("%d", len(collages))))
	fmt.Println(ui.RenderKeyValue("Distinct photos", fmt.Sprintf("%d", len(usage))))
	fmt.Println(ui.RenderKeyValue("Avg photos", fmt.Sprintf("%.1f", float64(totalPhotos)/float64(len(collages)))))
	fmt.Println(ui.RenderKeyValue("Last saved", fmt.Sprintf("%s (%s)", collages[0].Filename, formatTimeAgo(collages[0].SavedAt))))
	fmt.Println()

	renderTopPhotos(usage)

	if statsHTML != "" {
		if err := writeUsageChart(statsHTML, usage); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(ui.FormatSuccess("Chart written to " + statsHTML))
	}

	return nil
}

// renderTopPhotos displays a horizontal bar chart
func renderTopPhotos(usage []domain.PhotoUsage) {
	if len(usage) == 0 {
		return
	}

	fmt.Println(ui.StyleHeader.Render("Most Used Photos"))

	limit := min(len(usage), 10)
	maxCount := usage[0].Count
	barWidth := 20

	for _, u := range usage[:limit] {
		length := int(math.Ceil(float64(u.Count) / float64(maxCount) * float64(barWidth)))
		bar := strings.Repeat("█", length)

		fmt.Printf("%s %-20s %s\n",
			ui.StyleAccent.Render(fmt.Sprintf("%-*s", barWidth, bar)),
			u.PhotoID,
			ui.FormatMuted(fmt.Sprintf("(%d)", u.Count)),
		)
	}
}

// newUsageChart builds the bar chart for photo usage
func newUsageChart(usage []domain.PhotoUsage) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Collage stats"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Photo usage",
			Subtitle: "Saved collages containing each photo",
		}),
	)

	labels := make([]string, 0, len(usage))
	items := make([]opts.BarData, 0, len(usage))
	for _, u := range usage {
		labels = append(labels, u.PhotoID)
		items = append(items, opts.BarData{Value: u.Count})
	}

	bar.SetXAxis(labels).AddSeries("Collages", items)
	return bar
}

func writeUsageChart(path string, usage []domain.PhotoUsage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := newUsageChart(usage).Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
