package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ramonehamilton/mtga-match-parser/internal/carddb"
	"github.com/ramonehamilton/mtga-match-parser/internal/matchparser"
)

func TestTypeBreakdown(t *testing.T) {
	catalog := carddb.Catalog{
		"101": {Name: "Forest", Types: []string{"Land"}},
		"205": {Name: "Grizzly Bears", Types: []string{"Creature"}},
		"310": {Name: "Counterspell", Types: []string{"Instant"}},
	}

	points := TypeBreakdown(map[int]int{101: 3, 205: 2, 310: 1, 888: 5}, catalog)

	want := []DataPoint{
		{Label: "Creature", Value: 2},
		{Label: "Instant", Value: 1},
		{Label: "Land", Value: 3},
	}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d: %+v", len(points), len(want), points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func TestRenderMatchChart(t *testing.T) {
	catalog := carddb.Catalog{
		"101": {Name: "Forest", Types: []string{"Land"}},
		"205": {Name: "Grizzly Bears", Types: []string{"Creature"}},
	}
	result := &matchparser.Result{
		MatchID:       "abcdef12-3456-7890-abcd-ef1234567890",
		OpponentName:  "Sparky",
		PlayerCards:   map[int]int{101: 4},
		OpponentCards: map[int]int{205: 2},
	}

	outputPath := filepath.Join(t.TempDir(), "match.html")
	if err := RenderMatchChart(result, catalog, DefaultChartConfig(), outputPath); err != nil {
		t.Fatalf("RenderMatchChart() error = %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read chart output: %v", err)
	}
	html := string(data)
	for _, want := range []string{"Revealed Cards by Type", "Sparky", "Creature", "Land"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing %q", want)
		}
	}
}

func TestRenderGroupedBarChartEmpty(t *testing.T) {
	if err := RenderGroupedBarChart(nil, DefaultChartConfig(), "unused.html"); err == nil {
		t.Error("expected error for empty series")
	}
}
