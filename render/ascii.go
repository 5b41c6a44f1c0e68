package render

import (
	"strings"
	"time"

	"github.com/TFMV/pivotgraph/models"
)

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders the layout as ASCII art for terminal or text-based output"
}

const (
	focusGlyph = 'X'
	edgeGlyph  = '·'
)

// KindGlyph returns the character drawn for a node kind.
func KindGlyph(k models.Kind) rune {
	switch k {
	case models.KindScience:
		return '#'
	case models.KindThematic:
		return '~'
	case models.KindArchetype:
		return '@'
	case models.KindPhilosophical:
		return '*'
	default:
		return 'O'
	}
}

// Render creates an ASCII representation of the frame
func (r *ASCIIRenderer) Render(frame Frame, options *OutputOptions) ([]byte, error) {
	return []byte(Grid(frame, options, int(options.Width/10), int(options.Height/20))), nil
}

// Grid draws the frame into a bordered cols x rows character grid.
func Grid(frame Frame, options *OutputOptions, cols, rows int) string {
	cols = max(cols, 40)
	rows = max(rows, 20)

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	for i := 0; i < cols; i++ {
		grid[0][i] = '-'
		grid[rows-1][i] = '-'
	}
	for i := 0; i < rows; i++ {
		grid[i][0] = '|'
		grid[i][cols-1] = '|'
	}
	grid[0][0], grid[0][cols-1] = '+', '+'
	grid[rows-1][0], grid[rows-1][cols-1] = '+', '+'

	// inner area excludes the border
	innerCols, innerRows := cols-2, rows-2
	vp := frame.viewport(options)
	cell := func(x, y float64) (int, int) {
		gx, gy := vp.project(x, y, innerCols, innerRows)
		return gx + 1, gy + 1
	}

	for _, s := range frame.segments() {
		x1, y1 := cell(s.a.X, s.a.Y)
		x2, y2 := cell(s.b.X, s.b.Y)
		bresenham(x1, y1, x2, y2, func(x, y int) {
			if grid[y][x] == ' ' {
				grid[y][x] = edgeGlyph
			}
		})
	}

	for _, n := range frame.Nodes {
		x, y := cell(n.X, n.Y)
		glyph := KindGlyph(n.Kind)
		if frame.IsFocus(n.ID) {
			glyph = focusGlyph
		}
		grid[y][x] = glyph

		if options.ShowLabels && y+1 < rows-1 {
			label := []rune(n.DisplayLabel())
			for i := 0; i < len(label) && x+i < cols-1; i++ {
				grid[y+1][x+i] = label[i]
			}
		}
	}

	if title := []rune(options.Title); len(title) > 0 && len(title) < cols-4 && rows > 3 {
		copy(grid[1][2:], title)
	}
	if options.Timestamp && rows > 4 {
		copy(grid[rows-2][2:], []rune(time.Now().Format("2006-01-02 15:04")))
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return result.String()
}
