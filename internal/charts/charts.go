// Package charts renders match results as interactive HTML charts.
package charts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
	"github.com/ramonehamilton/mtga-match-parser/internal/matchparser"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "",
		Subtitle:   "",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData represents a data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

// chartTypeOrder fixes the X axis order for type breakdown charts.
var chartTypeOrder = []string{
	"Creature", "Planeswalker", "Instant", "Sorcery", "Artifact", "Enchantment", "Land", "Other",
}

// TypeBreakdown buckets revealed card copies by primary type.
func TypeBreakdown(cards map[int]int, catalog carddb.Catalog) []DataPoint {
	counts := make(map[string]int)
	for grpID, count := range cards {
		if !catalog.Has(grpID) {
			continue
		}
		primary := catalog.PrimaryType(grpID)
		found := false
		for _, t := range chartTypeOrder {
			if t == primary {
				found = true
				break
			}
		}
		if !found {
			primary = "Other"
		}
		counts[primary] += count
	}

	points := make([]DataPoint, 0, len(counts))
	for _, t := range chartTypeOrder {
		if counts[t] > 0 {
			points = append(points, DataPoint{Label: t, Value: float64(counts[t])})
		}
	}
	return points
}

// RenderMatchChart writes an HTML bar chart comparing revealed cards by
// primary type for both sides of a match.
func RenderMatchChart(result *matchparser.Result, catalog carddb.Catalog, config ChartConfig, outputPath string) error {
	opponent := "Opponent"
	if result.OpponentName != "" {
		opponent = result.OpponentName
	}

	series := []SeriesData{
		{Name: "You", Points: TypeBreakdown(result.PlayerCards, catalog)},
		{Name: opponent, Points: TypeBreakdown(result.OpponentCards, catalog)},
	}

	if config.Title == "" {
		config.Title = "Revealed Cards by Type"
	}
	if config.Subtitle == "" {
		config.Subtitle = fmt.Sprintf("Match %s", result.MatchID)
	}

	return RenderGroupedBarChart(series, config, outputPath)
}

// RenderGroupedBarChart creates a multi-series bar chart HTML file. The X
// axis is the union of the series labels, in first-seen order.
func RenderGroupedBarChart(series []SeriesData, config ChartConfig, outputPath string) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	xLabels := unionLabels(series)
	bar.SetXAxis(xLabels)

	for i, s := range series {
		byLabel := make(map[string]float64, len(s.Points))
		for _, point := range s.Points {
			byLabel[point.Label] = point.Value
		}

		yData := make([]opts.BarData, len(xLabels))
		for j, label := range xLabels {
			yData[j] = opts.BarData{Value: byLabel[label]}
		}

		color := config.Colors[i%len(config.Colors)]
		bar.AddSeries(s.Name, yData).
			SetSeriesOptions(
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: color,
				}),
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
			)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// RenderBarChart creates a single-series bar chart HTML file.
func RenderBarChart(data []DataPoint, name string, config ChartConfig, outputPath string) error {
	return RenderGroupedBarChart([]SeriesData{{Name: name, Points: data}}, config, outputPath)
}

// unionLabels merges series labels preserving first-seen order.
func unionLabels(series []SeriesData) []string {
	seen := make(map[string]int)
	var labels []string
	for _, s := range series {
		for _, point := range s.Points {
			if _, ok := seen[point.Label]; !ok {
				seen[point.Label] = len(labels)
				labels = append(labels, point.Label)
			}
		}
	}
	// Keep type-order labels stable when both series use the standard set
	sort.SliceStable(labels, func(i, j int) bool {
		return typeRank(labels[i]) < typeRank(labels[j])
	})
	return labels
}

func typeRank(label string) int {
	for i, t := range chartTypeOrder {
		if t == label {
			return i
		}
	}
	return len(chartTypeOrder)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
