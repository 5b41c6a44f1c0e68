// Package physics implements the perspective layout engine: shortest-path
// distances from a focus node drive a radial layout that is refined every
// tick by springs, repulsion and collision separation.
//
// The engine never converges to a static picture on purpose. It keeps
// gently adjusting, and it reacts immediately when the focus, the metric or
// the data changes.
package physics

import (
	"math"
	"unicode/utf8"

	"github.com/TFMV/pivotgraph/models"
)

// SimNode wraps an immutable node with mutable physics state.
type SimNode struct {
	models.Node
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Radius returns the distance from the origin.
func (n SimNode) Radius() float64 {
	return math.Hypot(n.X, n.Y)
}

// Finite reports whether position and velocity are all finite numbers.
func (n SimNode) Finite() bool {
	return finite(n.X) && finite(n.Y) && finite(n.VX) && finite(n.VY)
}

// Dimensions is the viewport reported by the rendering layer.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout is the read side of a running simulation, polled once per frame.
type Layout interface {
	Nodes() []SimNode
	Edges() []models.Edge
	Focus() (primary, secondary string)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func labelRunes(n models.Node) int {
	return utf8.RuneCountInString(n.Label)
}
