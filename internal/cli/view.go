package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/render/palette"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// viewCommand creates the view command: an interactive treemap drawn with
// terminal cells.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		src sourceFlags
		lay layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore a treemap in the terminal",
		Long: `Explore a treemap in the terminal.

Every terminal cell is one layout unit. Move over tiles with the arrow keys,
hjkl or the mouse; tab jumps to the next tile. The status line shows the
tile under the cursor. Press q to quit.`,
		Example: `  treemap view -d movies
  treemap view -i sales.json --tiling slice-dice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.FromConfig(c.cfg)
			src.apply(cmd, &opts)
			lay.apply(cmd, &opts)
			return c.runView(cmd.Context(), opts, src.noCache)
		},
	}

	src.register(cmd)
	lay.register(cmd)
	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	spinner := newSpinner(ctx, "Loading dataset...")
	spinner.Start()
	src, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.StopWithSuccess("Loaded %s (%d leaves)", src.Dataset.Title, len(hierarchy.Leaves(src.Tree)))

	m, err := newViewModel(src.Tree, src.Dataset.Title, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// View layout: one title line above the treemap, one status line below.
const (
	viewHeaderLines = 1
	viewFooterLines = 1
)

var (
	viewLabelColor = lipgloss.Color("#1a1a1a")
	viewStatusKey  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// viewModel is the bubbletea model behind `treemap view`.
type viewModel struct {
	tree   *hierarchy.Node
	title  string
	layout []treemap.Option
	scale  *palette.Scale

	width, height int // terminal size
	result        *treemap.Result
	total         float64
	grid          [][]int // tile index per cell, -1 for none
	err           error

	cx, cy  int
	tracker *render.Tracker
	hovered *treemap.Tile
}

func newViewModel(tree *hierarchy.Node, title string, opts pipeline.Options) (*viewModel, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	layout, err := opts.TreemapOptions()
	if err != nil {
		return nil, err
	}
	scale, err := opts.Palette()
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = tree.Name
	}
	m := &viewModel{
		tree:   tree,
		title:  title,
		layout: append(layout, treemap.WithRound(true)),
		scale:  scale,
	}
	m.tracker = render.NewTracker(&treemap.Result{}, render.HandlerFuncs{
		Hover: func(t treemap.Tile) { m.hovered = &t },
		Leave: func(treemap.Tile) { m.hovered = nil },
	})
	return m, nil
}

func (m *viewModel) Init() tea.Cmd {
	return nil
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.cx, m.cy-1)
		case "down", "j":
			m.moveTo(m.cx, m.cy+1)
		case "left", "h":
			m.moveTo(m.cx-1, m.cy)
		case "right", "l":
			m.moveTo(m.cx+1, m.cy)
		case "tab":
			m.nextTile()
		}
	case tea.MouseMsg:
		y := msg.Y - viewHeaderLines
		if y < 0 || y >= len(m.grid) || msg.X < 0 || msg.X >= m.width {
			m.tracker.Leave()
			return m, nil
		}
		m.moveTo(msg.X, y)
	}
	return m, nil
}

// resize lays the tree out again for a w x h terminal.
func (m *viewModel) resize(w, h int) {
	m.width, m.height = w, h
	rows := h - viewHeaderLines - viewFooterLines
	m.result, m.grid, m.err = nil, nil, nil
	if w < 1 || rows < 1 {
		m.tracker.SetResult(&treemap.Result{})
		return
	}

	res, err := treemap.Layout(m.tree, float64(w), float64(rows), m.layout...)
	if err != nil {
		m.err = err
		m.tracker.SetResult(&treemap.Result{})
		return
	}
	m.result = res
	m.scale.Domain(res.Categories...)
	m.total = 0
	for _, t := range res.Tiles {
		m.total += t.Value
	}

	m.grid = make([][]int, rows)
	for y := range m.grid {
		m.grid[y] = make([]int, w)
		for x := range m.grid[y] {
			m.grid[y][x] = -1
		}
	}
	for i, t := range res.Tiles {
		x0, y0, x1, y1 := cellRect(t, w, rows)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				m.grid[y][x] = i
			}
		}
	}

	m.tracker.SetResult(res)
	m.moveTo(m.cx, m.cy)
}

// moveTo clamps (x, y) to the treemap and reports the cell center to the
// tracker.
func (m *viewModel) moveTo(x, y int) {
	if len(m.grid) == 0 {
		return
	}
	m.cx = min(max(x, 0), m.width-1)
	m.cy = min(max(y, 0), len(m.grid)-1)
	m.tracker.Move(float64(m.cx)+0.5, float64(m.cy)+0.5)
}

// nextTile moves the cursor to the top-left cell of the next visible tile in
// layout order.
func (m *viewModel) nextTile() {
	if m.result == nil || len(m.result.Tiles) == 0 {
		return
	}
	start := -1
	if m.hovered != nil {
		for i, t := range m.result.Tiles {
			if t.ID == m.hovered.ID {
				start = i
				break
			}
		}
	}
	n := len(m.result.Tiles)
	for k := 1; k <= n; k++ {
		t := m.result.Tiles[(start+k)%n]
		x0, y0, x1, y1 := cellRect(t, m.width, len(m.grid))
		if x1 > x0 && y1 > y0 {
			m.moveTo(x0, y0)
			return
		}
	}
}

func (m *viewModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(truncate(m.title, m.width)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleError.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	case m.result == nil:
		b.WriteString(StyleDim.Render("terminal too small"))
		b.WriteString("\n")
		return b.String()
	}

	labels := m.labels()
	for y, row := range m.grid {
		x := 0
		for x < len(row) {
			i := row[x]
			end := x + 1
			for end < len(row) && row[end] == i && !m.isCursor(end, y) && !m.isCursor(x, y) {
				end++
			}
			text := string(labels[y][x:end])
			b.WriteString(m.cellStyle(i, m.isCursor(x, y)).Render(text))
			x = end
		}
		b.WriteString("\n")
	}
	b.WriteString(m.status())
	return b.String()
}

func (m *viewModel) isCursor(x, y int) bool { return x == m.cx && y == m.cy }

func (m *viewModel) cellStyle(tile int, cursor bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if tile >= 0 {
		color := m.scale.Color(m.result.Tiles[tile].Category)
		s = s.Background(lipgloss.Color(color)).Foreground(viewLabelColor)
	}
	if cursor {
		s = s.Reverse(true)
	}
	return s
}

// labels returns the character grid: each tile's name on its first row,
// leaving the last column blank so neighbors stay apart.
func (m *viewModel) labels() [][]rune {
	out := make([][]rune, len(m.grid))
	for y := range out {
		out[y] = []rune(strings.Repeat(" ", m.width))
	}
	for _, t := range m.result.Tiles {
		x0, y0, x1, y1 := cellRect(t, m.width, len(m.grid))
		if y1 <= y0 || x1-x0 < 2 {
			continue
		}
		copy(out[y0][x0:x1-1], []rune(truncate(t.Name, x1-x0-1)))
	}
	return out
}

func (m *viewModel) status() string {
	if m.hovered == nil {
		return StyleDim.Render("arrows/hjkl/mouse: move  tab: next tile  q: quit")
	}
	t := m.hovered
	share := 0.0
	if m.total > 0 {
		share = t.Value / m.total * 100
	}
	parts := []string{viewStatusKey.Render(t.Name)}
	if t.Category != "" {
		parts = append(parts, StyleDim.Render(t.Category))
	}
	parts = append(parts, StyleValue.Render(fmt.Sprintf("%s (%.1f%%)", formatValue(t.Value), share)))
	return strings.Join(parts, "  ")
}

// cellRect converts a tile to the half-open cell range it covers, clipped
// to a w x h grid.
func cellRect(t treemap.Tile, w, h int) (x0, y0, x1, y1 int) {
	clip := func(v float64, hi int) int {
		return min(max(int(math.Round(v)), 0), hi)
	}
	return clip(t.X0, w), clip(t.Y0, h), clip(t.X1, w), clip(t.Y1, h)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
