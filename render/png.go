package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// PNGRenderer rasterizes edges and node discs. Labels are not drawn.
type PNGRenderer struct{}

func (r *PNGRenderer) Name() string {
	return "PNG Renderer"
}

func (r *PNGRenderer) Description() string {
	return "Renders the layout as a PNG image without labels"
}

func (r *PNGRenderer) Render(frame Frame, options *OutputOptions) ([]byte, error) {
	w, h := int(options.Width), int(options.Height)
	if w <= 0 || h <= 0 {
		w, h = 1200, 900
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	pal := options.palette()
	bg := hexColor(pal.Background)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}

	vp := frame.viewport(options)
	for _, s := range frame.segments() {
		c := hexColor(pal.EdgeColor(s.edge.Type))
		if frame.Highlighted(s.edge) {
			c = hexColor(pal.Highlight)
		}
		x1, y1 := vp.project(s.a.X, s.a.Y, w, h)
		x2, y2 := vp.project(s.b.X, s.b.Y, w, h)
		bresenham(x1, y1, x2, y2, func(x, y int) { img.SetRGBA(x, y, c) })
	}

	scale := float64(w) / vp.width
	for _, n := range frame.Nodes {
		radius := options.NodeSize
		if frame.IsFocus(n.ID) {
			radius *= 1.6
		}
		cx, cy := vp.project(n.X, n.Y, w, h)
		disc(img, cx, cy, max(1, int(radius*scale)), hexColor(pal.GroupColor(n.Node)))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func disc(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.SetRGBA(cx+x, cy+y, c)
			}
		}
	}
}

func hexColor(hex string) color.RGBA {
	r, g, b := parseHexColor(hex)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
