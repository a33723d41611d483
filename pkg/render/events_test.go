package render

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/treemap"
)

type recorder struct{ events []string }

func (r *recorder) OnHover(t treemap.Tile) { r.events = append(r.events, "hover "+t.ID) }
func (r *recorder) OnLeave(t treemap.Tile) { r.events = append(r.events, "leave "+t.ID) }

func layoutAB(t *testing.T) *treemap.Result {
	t.Helper()
	root := hierarchy.Branch("root",
		hierarchy.Leaf("A", "x", 3),
		hierarchy.Leaf("B", "y", 1),
	)
	res, err := treemap.Layout(root, 4, 1)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	return res
}

func TestTracker(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(layoutAB(t), rec)

	tr.Move(0.5, 0.5) // A
	tr.Move(1.5, 0.5) // still A
	tr.Move(3.5, 0.5) // B
	tr.Move(10, 10)   // outside
	tr.Move(3.2, 0.2) // B again
	tr.Leave()
	tr.Leave()

	want := []string{"hover root.A", "leave root.A", "hover root.B", "leave root.B", "hover root.B", "leave root.B"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if _, ok := tr.Current(); ok {
		t.Error("Current() after Leave() should report no tile")
	}
}

func TestTrackerSetResult(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(layoutAB(t), rec)
	tr.Move(0, 0)
	tr.SetResult(layoutAB(t))

	if len(rec.events) != 2 || rec.events[1] != "leave root.A" {
		t.Errorf("events = %v, want hover then leave", rec.events)
	}
}

func TestHandlerFuncs(t *testing.T) {
	var hovered string
	h := HandlerFuncs{Hover: func(t treemap.Tile) { hovered = t.Name }}
	h.OnHover(treemap.Tile{Name: "A"})
	h.OnLeave(treemap.Tile{Name: "A"})
	if hovered != "A" {
		t.Errorf("hovered = %q, want A", hovered)
	}
}

func TestConvertWithoutRsvg(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert installed")
	}
	t.Setenv("PATH", "")
	if _, err := ToPNG(context.Background(), []byte("<svg/>"), 2); err == nil {
		t.Error("ToPNG() without rsvg-convert should fail")
	}
}
