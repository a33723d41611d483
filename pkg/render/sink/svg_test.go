package sink

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/render/legend"
	"github.com/matzehuels/treemap/pkg/render/palette"
	"github.com/matzehuels/treemap/pkg/treemap"
)

func testResult(t *testing.T) *treemap.Result {
	t.Helper()
	root := hierarchy.Branch("Games",
		hierarchy.Branch("Wii",
			hierarchy.Leaf("Wii Sports", "Wii", 82.53),
			hierarchy.Leaf("Mario Kart Wii", "Wii", 35.52),
		),
		hierarchy.Branch("NES",
			hierarchy.Leaf("Super Mario Bros.", "NES", 40.24),
		),
		hierarchy.Branch("PC",
			hierarchy.Leaf("Tom & Jerry <Deluxe>", "PC", 0),
		),
	)
	res, err := treemap.Layout(root, 400, 200)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	return res
}

func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("SVG is not well-formed XML: %v\n%s", err, data)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	res := testResult(t)
	svg := string(RenderSVG(res,
		WithTitle("Video Game Sales"),
		WithDescription("Top 100 Most Sold Video Games Grouped by Platform"),
	))
	wellFormed(t, []byte(svg))

	for _, want := range []string{
		`width="480" height="360"`,
		`<g transform="translate(60,100)">`,
		`<text id="title" x="200" y="-50"`,
		`>Video Game Sales</text>`,
		`<text id="description" x="200" y="-15"`,
		`id="Games.Wii.Wii Sports" class="tile"`,
		`data-name="Wii Sports" data-category="Wii" data-value="82.53"`,
		`<tspan x="4" y="13">Wii </tspan><tspan x="4" y="23">Sports</tspan>`,
		`<g id="legend" transform="translate(0,210)">`,
		`<g id="tooltip" class="tooltip" data-value=""`,
		`data-name="Tom &amp; Jerry &lt;Deluxe&gt;"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	if n := strings.Count(svg, `class="tile"`); n != len(res.Tiles) {
		t.Errorf("tile count = %d, want %d", n, len(res.Tiles))
	}
	if n := strings.Count(svg, `class="legend-item"`); n != 3 {
		t.Errorf("legend items = %d, want 3", n)
	}
	// Zero-value tiles get a rectangle but no label.
	if n := strings.Count(svg, `class="tile-text"`); n != 3 {
		t.Errorf("tile labels = %d, want 3", n)
	}
}

func TestRenderSVGColorsFollowCategories(t *testing.T) {
	res := testResult(t)
	scale, err := palette.New([]string{"#111111", "#222222", "#333333"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(res, WithPalette(scale)))

	if !strings.Contains(svg, `data-category="Wii" data-value="82.53" fill="#111111"`) {
		t.Error("first category should get the first color")
	}
	if !strings.Contains(svg, `data-category="NES" data-value="40.24" fill="#222222"`) {
		t.Error("second category should get the second color")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	res := testResult(t)
	svg := string(RenderSVG(res, WithoutLegend(), WithoutInteraction(), WithMargin(Margin{})))
	wellFormed(t, []byte(svg))

	if strings.Contains(svg, `id="legend"`) {
		t.Error("WithoutLegend() still drew a legend")
	}
	if strings.Contains(svg, "<script") {
		t.Error("WithoutInteraction() still embedded a script")
	}
	if strings.Contains(svg, `id="title"`) {
		t.Error("empty title should not be drawn")
	}
	if !strings.Contains(svg, `width="400" height="200"`) {
		t.Error("zero margins should give a drawing the size of the treemap")
	}
}

func TestRenderSVGGrowsForLegend(t *testing.T) {
	var leaves []*hierarchy.Node
	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		leaves = append(leaves, hierarchy.Leaf(c, c, 1))
	}
	res, err := treemap.Layout(hierarchy.Branch("root", leaves...), 100, 100)
	if err != nil {
		t.Fatal(err)
	}

	// 10 categories, 3 per row: 4 rows need 10 + 4*15 + 3*10 = 100 below the treemap.
	svg := string(RenderSVG(res, WithMargin(Margin{Top: 10, Bottom: 20})))
	if !strings.Contains(svg, `width="100" height="220"`) {
		t.Errorf("SVG size not grown for legend:\n%s", svg[:200])
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Wii Sports", []string{"Wii ", "Sports"}},
		{"Mario Kart Wii", []string{"Mario ", "Kart ", "Wii"}},
		{"Pokemon Red/Pokemon Blue", []string{"Pokemon ", "Red/", "Pokemon ", "Blue"}},
		{"GTA V", []string{"GT", "A V"}},
		{"NES", []string{"NES"}},
		{"x", []string{"x"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		if got := SplitLabel(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	res := testResult(t)
	data, err := RenderJSON(res, WithTitle("Video Game Sales"), WithLegend(legend.Options{Width: 300, HSpacing: 150, Size: 15, VSpacing: 10, Offset: 10}))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Title != "Video Game Sales" {
		t.Errorf("Title = %q", out.Title)
	}
	if out.Width != 480 || out.Treemap.Width != 400 {
		t.Errorf("Width = %v, Treemap.Width = %v", out.Width, out.Treemap.Width)
	}
	if len(out.Treemap.Tiles) != 4 {
		t.Fatalf("tiles = %d, want 4", len(out.Treemap.Tiles))
	}
	if out.Treemap.Tiles[0].ID != "Games.Wii.Wii Sports" || out.Treemap.Tiles[0].Color == "" {
		t.Errorf("first tile = %+v", out.Treemap.Tiles[0])
	}
	if len(out.Legend) != 3 || out.Legend[2].X != 0 || out.Legend[2].Y != 25 {
		t.Errorf("legend = %+v, want third item on the second row", out.Legend)
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Path != "Games.PC" {
		t.Errorf("warnings = %+v, want one for Games.PC", out.Warnings)
	}
}
