package legend

import "testing"

func TestPlace(t *testing.T) {
	o := DefaultOptions()
	if got := o.PerRow(); got != 3 {
		t.Fatalf("PerRow() = %d, want 3", got)
	}

	items := Place([]string{"Wii", "NES", "GB", "DS", "X360"}, o)
	want := []Item{
		{"Wii", 0, 0},
		{"NES", 150, 0},
		{"GB", 300, 0},
		{"DS", 0, 25},
		{"X360", 150, 25},
	}
	if len(items) != len(want) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestHeight(t *testing.T) {
	o := DefaultOptions()
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0},
		{1, 25},
		{3, 25},
		{4, 50},
		{18, 10 + 6*15 + 5*10},
	}
	for _, tt := range tests {
		if got := Height(tt.n, o); got != tt.want {
			t.Errorf("Height(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPerRowNarrow(t *testing.T) {
	o := Options{Width: 100, HSpacing: 150, Size: 15}
	if got := o.PerRow(); got != 1 {
		t.Errorf("PerRow() = %d, want 1", got)
	}
	if got := (Options{}).PerRow(); got != 1 {
		t.Errorf("zero Options PerRow() = %d, want 1", got)
	}
}

func TestTextOffsets(t *testing.T) {
	o := DefaultOptions()
	if o.TextX() != 18 || o.TextY() != 13 {
		t.Errorf("text offsets = (%v, %v), want (18, 13)", o.TextX(), o.TextY())
	}
}
