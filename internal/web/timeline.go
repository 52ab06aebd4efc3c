package web

import (
	"context"

	"github.com/a-h/templ"

	"github.com/opcopilot/opcopilot/internal/timeline"
)

// Pixels per timeline unit.
const (
	slotWidth   = 180.0
	unitHeight  = 100.0
	svgHeight   = 400.0
	nodeRadius  = 22.0
	markerWidth = 8.0
)

func svgX(x float64, left float64) float64 {
	return (x - left) * slotWidth
}

func svgY(y float64) float64 {
	return svgHeight/2 - y*unitHeight
}

// Timeline draws a layout as an inline SVG, or its message when empty.
func Timeline(layout timeline.Layout) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="timeline">`)
		h.elem("h2", "", layout.Title)
		if layout.Empty() {
			notice(h, layout.Message)
			h.raw("</section>")
			return
		}

		left, right := layout.XRange()
		width := (right - left) * slotWidth
		h.rawf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="100%%" role="img">`, width, svgHeight)
		h.rawf(`<line class="bar" x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#B0BEC5" stroke-width="6"/>`,
			svgY(0), width, svgY(0))

		for _, seg := range layout.Segments {
			from := svgX(float64(seg.From), left)
			to := svgX(float64(seg.To), left)
			h.rawf(`<line class="segment" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="6"/>`,
				from, svgY(0), to, svgY(0), seg.Color)
			mx := svgX(seg.Midpoint, left)
			my := svgY(seg.MarkerY)
			tip := my - markerWidth
			if !seg.MarkerUp {
				tip = my + markerWidth
			}
			h.rawf(`<polygon class="marker" points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`,
				mx-markerWidth, my, mx+markerWidth, my, mx, tip, seg.Color)
		}

		for _, node := range layout.Nodes {
			x := svgX(float64(node.X), left)
			cy := svgY(node.CircleY)
			h.raw(`<g class="phase">`)
			h.raw("<title>")
			h.text(node.Hover)
			h.raw("</title>")
			h.rawf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 3"/>`,
				x, svgY(node.ConnectorY), x, cy, node.Color)
			h.rawf(`<circle cx="%.1f" cy="%.1f" r="%.0f" fill="%s" stroke="%s" stroke-width="4"/>`,
				x, cy, nodeRadius, node.Color, node.StatusColor)
			h.rawf(`<text x="%.1f" y="%.1f" text-anchor="middle" font-size="11" fill="#fff">`, x, cy+4)
			h.text(node.DateBadge)
			h.raw("</text>")
			h.rawf(`<text class="label" x="%.1f" y="%.1f" text-anchor="middle" font-weight="bold" font-size="13">`, x, svgY(node.TitleY))
			h.text(node.Label)
			h.raw("</text>")
			h.rawf(`<text class="name" x="%.1f" y="%.1f" text-anchor="middle" font-size="12">`, x, svgY(node.DescY))
			h.text(node.Phase.Name)
			h.raw("</text></g>")
		}
		h.raw("</svg>")
		h.rawf(`<p class="period">%s → %s</p>`, layout.Start.Format("02/01/2006"), layout.End.Format("02/01/2006"))
		h.raw("</section>")
	})
}
