package render

import (
	"github.com/matzehuels/treemap/pkg/treemap"
)

// EventHandler receives pointer events for tiles.
type EventHandler interface {
	OnHover(t treemap.Tile)
	OnLeave(t treemap.Tile)
}

// HandlerFuncs adapts plain functions to [EventHandler]. Nil fields are
// skipped.
type HandlerFuncs struct {
	Hover func(treemap.Tile)
	Leave func(treemap.Tile)
}

func (h HandlerFuncs) OnHover(t treemap.Tile) {
	if h.Hover != nil {
		h.Hover(t)
	}
}

func (h HandlerFuncs) OnLeave(t treemap.Tile) {
	if h.Leave != nil {
		h.Leave(t)
	}
}

// Tracker follows a pointer over a laid-out treemap and notifies a handler
// when the tile under it changes. It is not safe for concurrent use.
type Tracker struct {
	result  *treemap.Result
	handler EventHandler
	current *treemap.Tile
}

// NewTracker returns a Tracker reporting to h.
func NewTracker(r *treemap.Result, h EventHandler) *Tracker {
	return &Tracker{result: r, handler: h}
}

// Move reports the pointer at (x, y) in layout coordinates. Entering a tile
// from another tile calls OnLeave for the old one before OnHover for the new
// one. Moving inside the same tile does nothing.
func (t *Tracker) Move(x, y float64) {
	tile, ok := t.result.TileAt(x, y)
	if ok && t.current != nil && t.current.ID == tile.ID {
		return
	}
	t.Leave()
	if ok {
		t.current = &tile
		t.handler.OnHover(tile)
	}
}

// Leave reports the pointer leaving the treemap.
func (t *Tracker) Leave() {
	if t.current == nil {
		return
	}
	prev := *t.current
	t.current = nil
	t.handler.OnLeave(prev)
}

// Current returns the hovered tile, if any.
func (t *Tracker) Current() (treemap.Tile, bool) {
	if t.current == nil {
		return treemap.Tile{}, false
	}
	return *t.current, true
}

// SetResult swaps the layout, for example after a resize. The hovered tile,
// if any, is left first.
func (t *Tracker) SetResult(r *treemap.Result) {
	t.Leave()
	t.result = r
}
