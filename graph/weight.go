// Package graph turns concept edges into weighted relationships and builds
// the active subgraph that the layout engine simulates.
package graph

import (
	"math"

	"github.com/TFMV/pivotgraph/models"
)

const (
	// MinWeight is the weight of primary lineage edges and of perfectly
	// scored secondary edges.
	MinWeight = 1.0
	// WeightSpan is added to MinWeight for a zero composite score.
	WeightSpan = 1.8
)

// Metric thresholds below which a non-primary edge is dropped.
var thresholds = map[models.Metric]float64{
	models.MetricCombined:   60,
	models.MetricMeaning:    65,
	models.MetricInfluence:  50,
	models.MetricChronology: 85,
}

// CompositeScore blends the three scores according to the metric. An
// unrecognised metric uses the unweighted mean.
func CompositeScore(s models.Scores, m models.Metric) float64 {
	switch m {
	case models.MetricCombined:
		return 0.4*s.Meaning + 0.4*s.Influence + 0.2*s.Chronology
	case models.MetricMeaning:
		return s.Meaning
	case models.MetricInfluence:
		return s.Influence
	case models.MetricChronology:
		return s.Chronology
	default:
		return (s.Meaning + s.Influence + s.Chronology) / 3
	}
}

// Weight returns the shortest-path cost of an edge. Primary lineage is
// uniform; other edges get cheaper as their composite score rises, from 2.8
// at score 0 down to 1.0 at score 100.
func Weight(e models.Edge, m models.Metric) float64 {
	if e.Type == models.EdgePrimary {
		return MinWeight
	}
	s := clampScore(CompositeScore(e.Scores(), m))
	return MinWeight + WeightSpan*((100-s)/100)
}

// PassesMetricThreshold decides whether a non-primary edge belongs to the
// active graph. Unrecognised metrics exclude the edge.
func PassesMetricThreshold(s models.Scores, m models.Metric) bool {
	floor, ok := thresholds[m]
	if !ok {
		return false
	}
	return CompositeScore(s, m) >= floor
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(0, math.Min(100, s))
}
