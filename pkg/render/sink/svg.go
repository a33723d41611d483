package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/treemap/pkg/render/legend"
	"github.com/matzehuels/treemap/pkg/treemap"
)

const tileCSS = `
    .tile { stroke: #fff; stroke-width: 0.5; }
    .tile:hover { stroke: #333; stroke-width: 1.5; }
    .tile-text { font: 10px sans-serif; pointer-events: none; }
    #legend text { font: 12px sans-serif; }
    #tooltip { font: 12px sans-serif; pointer-events: none; }
    #tooltip rect { fill: #fff; stroke: #333; opacity: 0.9; }`

const tooltipJS = `
    const tip = document.getElementById('tooltip');
    const lines = tip.querySelectorAll('tspan');
    document.querySelectorAll('.tile').forEach(el => {
      el.addEventListener('mouseenter', () => {
        const d = el.dataset, box = el.getBBox(), m = el.getCTM();
        lines[0].textContent = 'Name: ' + d.name;
        lines[1].textContent = 'Category: ' + d.category;
        lines[2].textContent = 'Value: ' + d.value;
        tip.setAttribute('data-value', d.value);
        tip.setAttribute('transform', 'translate(' + (m.e + box.x + box.width / 2) + ',' + (m.f + box.y) + ')');
        tip.setAttribute('visibility', 'visible');
      });
      el.addEventListener('mouseleave', () => tip.setAttribute('visibility', 'hidden'));
    });`

// RenderSVG draws the treemap.
func RenderSVG(res *treemap.Result, opts ...Option) []byte {
	r := newRenderer(opts...)
	r.scale.Domain(res.Categories...)

	width, height := r.frameSize(res)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(width), num(height), num(width), num(height))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileCSS)
	fmt.Fprintf(&buf, `  <g transform="translate(%s,%s)">`+"\n", num(r.margin.Left), num(r.margin.Top))

	r.renderHeading(&buf, res.Width)
	buf.WriteString(`    <g class="graph">` + "\n")
	for _, t := range res.Tiles {
		r.renderTile(&buf, t)
	}
	if r.showLegend && len(res.Categories) > 0 {
		r.renderLegend(&buf, res)
	}
	buf.WriteString("    </g>\n  </g>\n")

	if r.interactive {
		renderTooltip(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// frameSize returns the drawing size: the treemap plus margins, grown to fit
// the legend when it needs more room than the bottom margin.
func (r *renderer) frameSize(res *treemap.Result) (float64, float64) {
	width := r.margin.Left + res.Width + r.margin.Right
	height := r.margin.Top + res.Height + r.margin.Bottom
	if r.showLegend {
		height = max(height, r.margin.Top+res.Height+legend.Height(len(res.Categories), r.legend)+r.legend.VSpacing)
	}
	return width, height
}

func (r *renderer) renderHeading(buf *bytes.Buffer, width float64) {
	if r.title != "" {
		fmt.Fprintf(buf, `    <text id="title" x="%s" y="%s" text-anchor="middle" font-size="30px">%s</text>`+"\n",
			num(width/2), num(-r.margin.Top/2), escapeXML(r.title))
	}
	if r.description != "" {
		fmt.Fprintf(buf, `    <text id="description" x="%s" y="%s" text-anchor="middle" font-size="20px">%s</text>`+"\n",
			num(width/2), num(35-r.margin.Top/2), escapeXML(r.description))
	}
}

func (r *renderer) renderTile(buf *bytes.Buffer, t treemap.Tile) {
	value := strconv.FormatFloat(t.Value, 'f', -1, 64)
	fmt.Fprintf(buf, `      <g class="leaf" transform="translate(%s,%s)">`+"\n", num(t.X0), num(t.Y0))
	fmt.Fprintf(buf, `        <rect id="%s" class="tile" width="%s" height="%s" data-name="%s" data-category="%s" data-value="%s" fill="%s">`,
		escapeXML(t.ID), num(t.Width()), num(t.Height()),
		escapeXML(t.Name), escapeXML(t.Category), value, r.scale.Color(t.Category))
	fmt.Fprintf(buf, "<title>%s</title></rect>\n",
		escapeXML(fmt.Sprintf("Name: %s\nCategory: %s\nValue: %s", t.Name, t.Category, value)))

	if t.Width() > 0 && t.Height() > 0 {
		buf.WriteString(`        <text class="tile-text">`)
		for i, line := range SplitLabel(t.Name) {
			fmt.Fprintf(buf, `<tspan x="4" y="%d">%s</tspan>`, 13+i*10, escapeXML(line))
		}
		buf.WriteString("</text>\n")
	}
	buf.WriteString("      </g>\n")
}

func (r *renderer) renderLegend(buf *bytes.Buffer, res *treemap.Result) {
	o := r.legend
	fmt.Fprintf(buf, `      <g id="legend" transform="translate(0,%s)">`+"\n", num(res.Height+o.Offset))
	for _, item := range legend.Place(res.Categories, o) {
		fmt.Fprintf(buf, `        <g transform="translate(%s,%s)">`, num(item.X), num(item.Y))
		fmt.Fprintf(buf, `<rect class="legend-item" width="%s" height="%s" fill="%s"/>`,
			num(o.Size), num(o.Size), r.scale.Color(item.Category))
		fmt.Fprintf(buf, `<text x="%s" y="%s">%s</text></g>`+"\n",
			num(o.TextX()), num(o.TextY()), escapeXML(item.Category))
	}
	buf.WriteString("      </g>\n")
}

func renderTooltip(buf *bytes.Buffer) {
	buf.WriteString(`  <g id="tooltip" class="tooltip" data-value="" visibility="hidden">` + "\n")
	buf.WriteString(`    <rect x="-110" y="-58" width="220" height="50" rx="3"/>` + "\n")
	buf.WriteString(`    <text text-anchor="middle"><tspan x="0" y="-42"></tspan><tspan x="0" y="-28"></tspan><tspan x="0" y="-14"></tspan></text>` + "\n")
	buf.WriteString("  </g>\n")
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", tooltipJS)
}

// SplitLabel breaks a tile name into lines before every ASCII capital that
// is followed by a non-capital, so "Mario Kart Wii" becomes "Mario ",
// "Kart ", "Wii". The first character never starts a new line.
func SplitLabel(name string) []string {
	runes := []rune(name)
	var (
		lines []string
		start int
	)
	for i := 1; i < len(runes)-1; i++ {
		if isUpper(runes[i]) && !isUpper(runes[i+1]) {
			lines = append(lines, string(runes[start:i]))
			start = i
		}
	}
	return append(lines, string(runes[start:]))
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
