package graph

import (
	"github.com/TFMV/pivotgraph/models"
)

// BuildActive selects the part of the dataset visible under the filter.
// Every returned edge has both endpoints in the returned node list and the
// dataset root is always kept.
func BuildActive(ds *models.Dataset, f models.FilterState) ([]models.Node, []models.Edge) {
	if ds == nil {
		return nil, nil
	}

	metric := f.Metric
	if metric == "" {
		metric = models.MetricCombined
	}

	nodes := make([]models.Node, 0, len(ds.Nodes))
	active := make(map[string]struct{}, len(ds.Nodes))
	visible := ds.FilterNodes(func(n *models.Node) bool {
		return n.ID == ds.Root || nodeVisible(*n, f)
	})
	for _, n := range visible {
		if _, dup := active[n.ID]; dup {
			continue
		}
		active[n.ID] = struct{}{}
		nodes = append(nodes, n)
	}

	present := func(e models.Edge) bool {
		_, s := active[e.Source]
		_, t := active[e.Target]
		return s && t
	}

	var edges []models.Edge
	for _, e := range ds.Lineage {
		if present(e) {
			edges = append(edges, e)
		}
	}
	for _, e := range ds.Resonance {
		if !present(e) {
			continue
		}
		if e.Type == models.EdgePrimary {
			edges = append(edges, e)
			continue
		}
		if e.Type == models.EdgeArchetypal && !f.ShowArchetypes {
			continue
		}
		if e.Type != models.EdgeArchetypal && !f.ShowCrossReferences {
			continue
		}
		if PassesMetricThreshold(e.Scores(), metric) {
			edges = append(edges, e)
		}
	}
	if f.ShowThematic {
		for _, e := range ds.Waves {
			if present(e) && PassesMetricThreshold(e.Scores(), metric) {
				edges = append(edges, e)
			}
		}
	}

	return nodes, edges
}

func nodeVisible(n models.Node, f models.FilterState) bool {
	if f.Hides(n.Kind) {
		return false
	}
	if n.Kind == models.KindThematic && !f.ShowThematic {
		return false
	}
	if f.MaxLayer < 0 || n.Layer == models.LayerExempt {
		return true
	}
	return n.Layer <= f.MaxLayer
}
