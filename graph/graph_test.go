package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/pivotgraph/models"
)

var allMetrics = append(models.Metrics(), models.Metric("unknown"))

func TestPrimaryWeightIsUniform(t *testing.T) {
	e := models.NewEdge("a", "b", models.EdgePrimary).WithScores(0, 0, 0)
	for _, m := range allMetrics {
		assert.Equal(t, 1.0, Weight(e, m), "metric %s", m)
	}
}

func TestWeightDecreasesWithScore(t *testing.T) {
	for _, m := range allMetrics {
		prev := Weight(models.NewEdge("a", "b", models.EdgeCrossReference).WithScores(0, 0, 0), m)
		assert.InDelta(t, 2.8, prev, 1e-9, "metric %s", m)

		for s := 5.0; s <= 100; s += 5 {
			w := Weight(models.NewEdge("a", "b", models.EdgeThematic).WithScores(s, s, s), m)
			assert.Less(t, w, prev, "metric %s score %v", m, s)
			assert.GreaterOrEqual(t, w, 1.0)
			prev = w
		}
		assert.InDelta(t, 1.0, prev, 1e-9, "metric %s", m)
	}
}

func TestWeightClampsOutOfRangeScores(t *testing.T) {
	hi := models.NewEdge("a", "b", models.EdgeCrossReference).WithScores(500, 500, 500)
	lo := models.NewEdge("a", "b", models.EdgeCrossReference).WithScores(-50, -50, -50)
	assert.Equal(t, 1.0, Weight(hi, models.MetricCombined))
	assert.InDelta(t, 2.8, Weight(lo, models.MetricCombined), 1e-9)
}

func TestCompositeScore(t *testing.T) {
	s := models.Scores{Meaning: 80, Influence: 40, Chronology: 30}
	assert.InDelta(t, 0.4*80+0.4*40+0.2*30, CompositeScore(s, models.MetricCombined), 1e-9)
	assert.Equal(t, 80.0, CompositeScore(s, models.MetricMeaning))
	assert.Equal(t, 40.0, CompositeScore(s, models.MetricInfluence))
	assert.Equal(t, 30.0, CompositeScore(s, models.MetricChronology))
	assert.InDelta(t, 50.0, CompositeScore(s, "other"), 1e-9)
}

func TestDefaultScoresWeight(t *testing.T) {
	// 0.4*70 + 0.4*50 + 0.2*90 = 66
	e := models.NewEdge("a", "b", models.EdgeCrossReference)
	assert.InDelta(t, 1+1.8*0.34, Weight(e, models.MetricCombined), 1e-9)
	assert.True(t, PassesMetricThreshold(e.Scores(), models.MetricCombined))
}

func TestPassesMetricThreshold(t *testing.T) {
	full := models.Scores{Meaning: 100, Influence: 100, Chronology: 100}
	zero := models.Scores{}
	assert.True(t, PassesMetricThreshold(full, models.MetricCombined))
	assert.False(t, PassesMetricThreshold(zero, models.MetricCombined))

	cases := []struct {
		metric models.Metric
		scores models.Scores
		want   bool
	}{
		{models.MetricCombined, models.Scores{Meaning: 61, Influence: 61, Chronology: 61}, true},
		{models.MetricCombined, models.Scores{Meaning: 59, Influence: 59, Chronology: 59}, false},
		{models.MetricMeaning, models.Scores{Meaning: 65}, true},
		{models.MetricMeaning, models.Scores{Meaning: 64.9}, false},
		{models.MetricInfluence, models.Scores{Influence: 50}, true},
		{models.MetricInfluence, models.Scores{Influence: 49}, false},
		{models.MetricChronology, models.Scores{Chronology: 85}, true},
		{models.MetricChronology, models.Scores{Chronology: 84}, false},
		{"unknown", full, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PassesMetricThreshold(tc.scores, tc.metric), "%s %+v", tc.metric, tc.scores)
	}
}

func sampleDataset(t *testing.T) *models.Dataset {
	t.Helper()
	d := models.NewDataset("sample", "source")
	nodes := []models.Node{
		{ID: "source", Label: "Source", Kind: models.KindConcept, Layer: 0},
		{ID: "judaism", Label: "Judaism", Kind: models.KindConcept, Layer: 1},
		{ID: "christianity", Label: "Christianity", Kind: models.KindConcept, Layer: 2},
		{ID: "physics", Label: "Physics", Kind: models.KindScience, Layer: 3},
		{ID: "hero", Label: "Hero", Kind: models.KindArchetype, Layer: models.LayerExempt},
		{ID: "flood", Label: "Flood", Kind: models.KindThematic, Layer: models.LayerExempt},
	}
	for _, n := range nodes {
		require.NoError(t, d.AddNode(n))
	}
	edges := []models.Edge{
		models.NewEdge("source", "judaism", models.EdgePrimary),
		models.NewEdge("judaism", "christianity", models.EdgePrimary),
		models.NewEdge("christianity", "physics", models.EdgePrimary),
		models.NewEdge("judaism", "physics", models.EdgeCrossReference).WithScores(90, 90, 90),
		models.NewEdge("judaism", "christianity", models.EdgeCrossReference).WithScores(10, 10, 10),
		models.NewEdge("hero", "christianity", models.EdgeArchetypal).WithScores(80, 80, 80),
		models.NewEdge("flood", "judaism", models.EdgeThematic).WithScores(95, 95, 95),
	}
	for _, e := range edges {
		require.NoError(t, d.AddEdge(e))
	}
	return d
}

func assertNoDangling(t *testing.T, nodes []models.Node, edges []models.Edge) {
	t.Helper()
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	for _, e := range edges {
		assert.True(t, ids[e.Source], "dangling source %s", e.Source)
		assert.True(t, ids[e.Target], "dangling target %s", e.Target)
	}
}

func TestBuildActiveDefaultFilter(t *testing.T) {
	ds := sampleDataset(t)
	nodes, edges := BuildActive(ds, models.DefaultFilter())
	assert.Len(t, nodes, 6)
	// the low scoring cross reference is dropped
	assert.Len(t, edges, 6)
	assertNoDangling(t, nodes, edges)
}

func TestBuildActiveLayerCap(t *testing.T) {
	ds := sampleDataset(t)
	f := models.DefaultFilter()
	f.MaxLayer = 1

	nodes, edges := BuildActive(ds, f)
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"source", "judaism", "hero", "flood"}, ids)
	assertNoDangling(t, nodes, edges)
}

func TestBuildActiveToggles(t *testing.T) {
	ds := sampleDataset(t)
	f := models.DefaultFilter()
	f.ShowThematic = false
	f.ShowArchetypes = false
	f.ShowCrossReferences = false

	nodes, edges := BuildActive(ds, f)
	assert.Len(t, nodes, 4)
	for _, e := range edges {
		assert.Equal(t, models.EdgePrimary, e.Type)
	}
	assertNoDangling(t, nodes, edges)
}

func TestBuildActiveKeepsRoot(t *testing.T) {
	ds := sampleDataset(t)
	f := models.DefaultFilter()
	f.HiddenKinds = []models.Kind{models.KindConcept}

	nodes, edges := BuildActive(ds, f)
	var hasRoot bool
	for _, n := range nodes {
		if n.ID == "source" {
			hasRoot = true
		}
	}
	assert.True(t, hasRoot)
	assertNoDangling(t, nodes, edges)
}

func TestBuildActiveUnknownMetricDropsSecondaryEdges(t *testing.T) {
	ds := sampleDataset(t)
	f := models.DefaultFilter()
	f.Metric = "astrology"

	_, edges := BuildActive(ds, f)
	for _, e := range edges {
		assert.Equal(t, models.EdgePrimary, e.Type)
	}
	assert.Len(t, edges, 3)
}

func TestBuildActiveNil(t *testing.T) {
	nodes, edges := BuildActive(nil, models.DefaultFilter())
	assert.Nil(t, nodes)
	assert.Nil(t, edges)
}

func TestAdjacency(t *testing.T) {
	adj := NewAdjacency([]models.Edge{
		models.NewEdge("a", "b", models.EdgePrimary),
		models.NewEdge("c", "a", models.EdgeThematic),
		models.NewEdge("a", "a", models.EdgeThematic),
		models.NewEdge("a", "b", models.EdgeCrossReference),
	})

	assert.Equal(t, []string{"b", "c"}, adj.Neighbors("a"))
	assert.Equal(t, []string{"c"}, adj.Neighbors("a", models.EdgeThematic))
	assert.Equal(t, []string{"a"}, adj.Neighbors("c"))
	assert.Empty(t, adj.Neighbors("zzz"))
	assert.Equal(t, 4, adj.Degree("a"))
	assert.Equal(t, 2, adj.Degree("b"))
}
