// Package render draws layout snapshots. Renderers only read positions;
// they never feed anything back into the simulation.
package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/TFMV/pivotgraph/ingest"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
)

// ErrUnsupportedFormat is returned by GetRenderer for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format    string  // Output format (svg, ascii, html, json, dot, png)
	Width     float64 // Width of the output
	Height    float64 // Height of the output
	// Fit scales the viewport to the node bounds instead of a fixed
	// Width x Height window centred on the focus.
	Fit            bool
	Palette        *ingest.Palette
	NodeSize       float64 // Default node radius
	EdgeWidth      float64 // Default edge width
	FontSize       float64 // Font size for labels
	ShowLabels     bool    // Show node labels
	ShowEdgeLabels bool    // Show edge labels
	Timestamp      bool    // Include timestamp in visualization
	Title          string
	// PollURL makes the HTML page refresh positions from a snapshot endpoint.
	PollURL string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      1200,
		Height:     900,
		Fit:        true,
		Palette:    ingest.DefaultPalette(),
		NodeSize:   8.0,
		EdgeWidth:  1.0,
		FontSize:   11.0,
		ShowLabels: true,
	}
}

func (o *OutputOptions) palette() *ingest.Palette {
	if o.Palette == nil {
		return ingest.DefaultPalette()
	}
	return o.Palette
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render draws one frame using the provided options
	Render(frame Frame, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "png":
		return &PNGRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Formats lists the formats GetRenderer accepts.
func Formats() []string {
	return []string{"svg", "ascii", "html", "json", "dot", "png"}
}

// Generate renders a layout with the default options for format.
func Generate(layout physics.Layout, format string) ([]byte, error) {
	return GenerateWithOptions(layout, NewDefaultOptions(format))
}

// GenerateWithOptions snapshots layout and renders it.
func GenerateWithOptions(layout physics.Layout, options *OutputOptions) ([]byte, error) {
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(FrameOf(layout), options)
}

// Frame is one immutable snapshot of a layout.
type Frame struct {
	Nodes     []physics.SimNode `json:"nodes"`
	Edges     []models.Edge     `json:"edges"`
	Focus     string            `json:"focus"`
	Secondary string            `json:"secondary,omitempty"`
}

// FrameOf polls a layout once.
func FrameOf(layout physics.Layout) Frame {
	primary, secondary := layout.Focus()
	return Frame{
		Nodes:     layout.Nodes(),
		Edges:     layout.Edges(),
		Focus:     primary,
		Secondary: secondary,
	}
}

// IsFocus reports whether id is the primary or secondary focus.
func (f Frame) IsFocus(id string) bool {
	return id != "" && (id == f.Focus || id == f.Secondary)
}

// Highlighted reports whether an edge touches a focus.
func (f Frame) Highlighted(e models.Edge) bool {
	return e.Touches(f.Focus) || e.Touches(f.Secondary)
}

// segment is an edge whose endpoints both exist in the frame.
type segment struct {
	edge models.Edge
	a, b physics.SimNode
}

// segments resolves edge endpoints. Edges with a missing endpoint are
// skipped.
func (f Frame) segments() []segment {
	index := make(map[string]int, len(f.Nodes))
	for i, n := range f.Nodes {
		index[n.ID] = i
	}

	out := make([]segment, 0, len(f.Edges))
	for _, e := range f.Edges {
		i, okA := index[e.Source]
		j, okB := index[e.Target]
		if !okA || !okB {
			continue
		}
		out = append(out, segment{edge: e, a: f.Nodes[i], b: f.Nodes[j]})
	}
	return out
}

// viewport is the world-space rectangle mapped onto the output.
type viewport struct {
	minX, minY, width, height float64
}

func (f Frame) viewport(o *OutputOptions) viewport {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1200
	}
	if h <= 0 {
		h = 900
	}
	if !o.Fit || len(f.Nodes) == 0 {
		return viewport{minX: -w / 2, minY: -h / 2, width: w, height: h}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range f.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}

	const margin = 60.0
	vp := viewport{
		minX:   minX - margin,
		minY:   minY - margin,
		width:  maxX - minX + 2*margin,
		height: maxY - minY + 2*margin,
	}
	// keep the output aspect ratio
	if want := vp.width * h / w; want > vp.height {
		vp.minY -= (want - vp.height) / 2
		vp.height = want
	} else {
		want := vp.height * w / h
		vp.minX -= (want - vp.width) / 2
		vp.width = want
	}
	return vp
}

// project maps world coordinates into a cols x rows grid.
func (vp viewport) project(x, y float64, cols, rows int) (int, int) {
	gx := int((x - vp.minX) / vp.width * float64(cols-1))
	gy := int((y - vp.minY) / vp.height * float64(rows-1))
	return clamp(gx, 0, cols-1), clamp(gy, 0, rows-1)
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// bresenham calls plot for every cell on the line from (x1, y1) to (x2, y2).
func bresenham(x1, y1, x2, y2 int, plot func(x, y int)) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func parseHexColor(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) == 3 {
		r := parseHexDigit(hex[0])
		g := parseHexDigit(hex[1])
		b := parseHexDigit(hex[2])
		return r * 17, g * 17, b * 17
	} else if len(hex) >= 6 {
		return parseHexByte(hex[0:2]), parseHexByte(hex[2:4]), parseHexByte(hex[4:6])
	}
	return 0, 0, 0
}

func parseHexDigit(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func parseHexByte(s string) uint8 {
	var result uint8
	for i := 0; i < len(s); i++ {
		result = result*16 + parseHexDigit(s[i])
	}
	return result
}
