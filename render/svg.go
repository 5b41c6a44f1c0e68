package render

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/TFMV/pivotgraph/models"
)

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders the layout as Scalable Vector Graphics centred on the focus"
}

// Render creates an SVG representation of the frame
func (r *SVGRenderer) Render(frame Frame, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	pal := options.palette()
	vp := frame.viewport(options)

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="%.2f %.2f %.2f %.2f" xmlns="http://www.w3.org/2000/svg">
<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, options.Width, options.Height, vp.minX, vp.minY, vp.width, vp.height,
		vp.minX, vp.minY, vp.width, vp.height, pal.Background)

	buf.WriteString(`<g class="edges">` + "\n")
	for _, s := range frame.segments() {
		color := pal.EdgeColor(s.edge.Type)
		width := options.EdgeWidth
		if frame.Highlighted(s.edge) {
			color = pal.Highlight
			width *= 2
		}

		dash := ""
		switch s.edge.Type {
		case models.EdgeThematic:
			dash = ` stroke-dasharray="6,4"`
		case models.EdgeArchetypal:
			dash = ` stroke-dasharray="2,4"`
		}

		fmt.Fprintf(&buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%g"%s/>`+"\n",
			s.a.X, s.a.Y, s.b.X, s.b.Y, color, width, dash)

		if options.ShowEdgeLabels && s.edge.Type != "" {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%s</text>`+"\n",
				(s.a.X+s.b.X)/2, (s.a.Y+s.b.Y)/2, options.FontSize*0.8, color, html.EscapeString(string(s.edge.Type)))
		}
	}
	buf.WriteString("</g>\n")

	buf.WriteString(`<g class="nodes">` + "\n")
	for _, n := range frame.Nodes {
		radius := options.NodeSize
		stroke := "none"
		if frame.IsFocus(n.ID) {
			radius *= 1.6
			stroke = pal.Highlight
		}

		fmt.Fprintf(&buf, `<circle id="%s" cx="%.2f" cy="%.2f" r="%g" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
			html.EscapeString(n.ID), n.X, n.Y, radius, pal.GroupColor(n.Node), stroke)

		if options.ShowLabels {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%s</text>`+"\n",
				n.X, n.Y+radius+options.FontSize+2, options.FontSize, pal.Foreground, html.EscapeString(n.DisplayLabel()))
		}
	}
	buf.WriteString("</g>\n")

	if options.Title != "" {
		fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="%s">%s</text>`+"\n",
			vp.minX+10, vp.minY+options.FontSize+8, options.FontSize*1.4, pal.Foreground, html.EscapeString(options.Title))
	}
	if options.Timestamp {
		fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="8" fill="#808080">%s</text>`+"\n",
			vp.minX+5, vp.minY+vp.height-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}
