package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/pivotgraph/models"
)

func TestSampleIsValid(t *testing.T) {
	ds, err := Sample()
	require.NoError(t, err)

	assert.Equal(t, "Perspectives", ds.Name)
	assert.Equal(t, "source", ds.Root)
	assert.Len(t, ds.Nodes, 21)
	assert.NotEmpty(t, ds.Lineage)
	assert.NotEmpty(t, ds.Resonance)
	assert.NotEmpty(t, ds.Waves)

	for _, e := range ds.Lineage {
		assert.Equal(t, models.EdgePrimary, e.Type)
	}
	for _, e := range ds.Waves {
		assert.Equal(t, models.EdgeThematic, e.Type)
	}

	hero, err := ds.FindNodeByID("hero")
	require.NoError(t, err)
	assert.Equal(t, models.KindArchetype, hero.Kind)
	assert.Equal(t, models.LayerExempt, hero.Layer)

	// omitted scores fall back to defaults
	for _, e := range ds.Resonance {
		if e.Source == "hero" && e.Target == "christianity" {
			assert.Equal(t, models.DefaultChronology, e.Scores().Chronology)
		}
	}
}

func TestJSONProcessor(t *testing.T) {
	data := []byte(`{
		"root": "a",
		"nodes": [
			{"id": "a", "label": "A", "kind": "concept", "layer": 0},
			{"id": "b", "label": "B", "kind": "science", "layer": 1}
		],
		"lineage": [{"source": "a", "target": "b"}],
		"resonance": [{"source": "b", "target": "a", "meaning": 90}]
	}`)

	ds, err := NewJSONProcessor().ProcessData(data)
	require.NoError(t, err)
	assert.Equal(t, "JSON Import", ds.Name)
	assert.Equal(t, models.EdgePrimary, ds.Lineage[0].Type)
	assert.Equal(t, models.EdgeCrossReference, ds.Resonance[0].Type)
	assert.Equal(t, 90.0, ds.Resonance[0].Scores().Meaning)
	assert.Equal(t, models.KindScience, ds.Nodes[1].Kind)
}

func TestJSONProcessorRejectsBadDatasets(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{
			name: "duplicate",
			data: `{"nodes": [{"id": "a"}, {"id": "a"}]}`,
			want: models.ErrDuplicateNode,
		},
		{
			name: "dangling",
			data: `{"nodes": [{"id": "a"}], "lineage": [{"source": "a", "target": "zzz"}]}`,
			want: models.ErrDanglingEdge,
		},
		{
			name: "unknown kind",
			data: `{"nodes": [{"id": "a", "kind": "dragon"}]}`,
			want: models.ErrUnknownKind,
		},
		{
			name: "missing root",
			data: `{"root": "x", "nodes": [{"id": "a"}]}`,
			want: models.ErrMissingRoot,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewJSONProcessor().ProcessData([]byte(tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := NewJSONProcessor().ProcessData([]byte("{not json"))
	assert.Error(t, err)
}

func TestYAMLProcessor(t *testing.T) {
	data := []byte(`
name: Tiny
root: a
nodes:
  - id: a
    label: A
    kind: concept
    layer: 0
  - id: w
    label: Wave
    kind: thematic
    layer: -1
lineage: []
waves:
  - source: w
    target: a
    meaning: 80
    influence: 70
    chronology: 95
`)
	ds, err := NewYAMLProcessor().ProcessData(data)
	require.NoError(t, err)
	assert.Equal(t, "Tiny", ds.Name)
	assert.Equal(t, models.KindThematic, ds.Nodes[1].Kind)
	require.Len(t, ds.Waves, 1)
	assert.Equal(t, models.EdgeThematic, ds.Waves[0].Type)
	assert.Equal(t, 95.0, ds.Waves[0].Scores().Chronology)

	_, err = NewYAMLProcessor().ProcessData([]byte("nodes:\n  - id: a\n    kind: dragon\n"))
	assert.Error(t, err)
}

func TestCSVProcessor(t *testing.T) {
	data := []byte(`# relationships
source,target,type,meaning,influence,chronology
root,child,primary,,,
child,grandchild,,,,
root,other,cross,80,70,60
wave,child,thematic,90,,
`)
	ds, err := NewCSVProcessor().ProcessData(data)
	require.NoError(t, err)

	assert.Equal(t, "root", ds.Root)
	assert.Len(t, ds.Nodes, 5)
	assert.Len(t, ds.Lineage, 2)
	assert.Len(t, ds.Resonance, 1)
	assert.Len(t, ds.Waves, 1)
	assert.Equal(t, 80.0, ds.Resonance[0].Scores().Meaning)
	assert.Equal(t, models.DefaultInfluence, ds.Waves[0].Scores().Influence)

	layers := map[string]int{}
	for _, n := range ds.Nodes {
		layers[n.ID] = n.Layer
	}
	assert.Equal(t, 0, layers["root"])
	assert.Equal(t, 1, layers["child"])
	assert.Equal(t, 2, layers["grandchild"])
	assert.Equal(t, models.LayerExempt, layers["other"])
	assert.Equal(t, models.LayerExempt, layers["wave"])

	wave, err := ds.FindNodeByID("wave")
	require.NoError(t, err)
	assert.Equal(t, models.KindThematic, wave.Kind)
}

func TestCSVProcessorErrors(t *testing.T) {
	_, err := NewCSVProcessor().ProcessData([]byte("a,b\n1,2\n"))
	assert.Error(t, err)

	_, err = NewCSVProcessor().ProcessData([]byte("source,target,meaning\na,b,lots\n"))
	assert.Error(t, err)

	_, err = NewCSVProcessor().ProcessData([]byte("source,target\n"))
	assert.Error(t, err)
}

func TestLogProcessor(t *testing.T) {
	data := []byte(`
# lineage
Source -> Judaism
Judaism -> Christianity
Zoroastrianism => Judaism
Flood ~> Judaism
Hero *> Christianity
this line is ignored
`)
	ds, err := NewLogProcessor().ProcessData(data)
	require.NoError(t, err)

	assert.Equal(t, "Source", ds.Root)
	assert.Len(t, ds.Nodes, 6)
	assert.Len(t, ds.Lineage, 2)
	assert.Len(t, ds.Resonance, 2)
	assert.Len(t, ds.Waves, 1)

	hero, err := ds.FindNodeByID("Hero")
	require.NoError(t, err)
	assert.Equal(t, models.KindArchetype, hero.Kind)

	christianity, err := ds.FindNodeByID("Christianity")
	require.NoError(t, err)
	assert.Equal(t, 2, christianity.Layer)

	_, err = NewLogProcessor().ProcessData([]byte("nothing here\n"))
	assert.Error(t, err)
}

func TestGetProcessor(t *testing.T) {
	for format, name := range map[string]string{
		"json":  "JSON Processor",
		".JSON": "JSON Processor",
		"yaml":  "YAML Processor",
		".yml":  "YAML Processor",
		"csv":   "CSV Processor",
		"log":   "Log Processor",
		".txt":  "Log Processor",
	} {
		p, err := GetProcessor(format)
		require.NoError(t, err, format)
		assert.Equal(t, name, p.GetName())
	}

	_, err := GetProcessor("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: a\nnodes:\n  - id: a\n"), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a", ds.Root)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(filepath.Join(dir, "graph.xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()

	a := p.GroupColor(models.Node{ID: "x", Group: "abrahamic"})
	b := p.GroupColor(models.Node{ID: "y", Group: "abrahamic"})
	assert.Equal(t, a, b)
	assert.Contains(t, p.NodeColors, a)
	assert.Contains(t, p.NodeColors, p.GroupColor(models.Node{Kind: models.KindScience}))

	assert.Equal(t, p.EdgeColors[0], p.EdgeColor(models.EdgePrimary))
	assert.Equal(t, p.EdgeColors[2], p.EdgeColor(models.EdgeThematic))
	assert.Equal(t, p.EdgeColors[4], p.EdgeColor("other"))

	empty := &Palette{Foreground: "#000"}
	assert.Equal(t, "#000", empty.GroupColor(models.Node{}))
	assert.Equal(t, "#000", empty.EdgeColor(models.EdgePrimary))

	surreal, err := GetPalette("surreal")
	require.NoError(t, err)
	assert.Equal(t, SurrealPalette(), surreal)
	_, err = GetPalette("neon")
	assert.Error(t, err)
}
