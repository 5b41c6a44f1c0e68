// Package ingest turns dataset files into models.Dataset values. JSON and
// YAML carry the full dataset; CSV and plain-text logs carry bare edge lists
// from which nodes and layers are inferred.
package ingest

import (
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
)

// ErrUnsupportedFormat is returned for unknown file formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

//go:embed sample.json
var sampleJSON []byte

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a validated dataset
	ProcessData(data []byte) (*models.Dataset, error)

	// GetName returns the name of the processor
	GetName() string
}

// Palette provides color schemes for rendering
type Palette struct {
	NodeColors []string
	// EdgeColors is indexed primary, cross, thematic, archetypal, other.
	EdgeColors []string
	Highlight  string
	Background string
	Foreground string
}

// DefaultPalette returns a default color palette with vibrant colors
func DefaultPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#4285F4", // Blue
			"#EA4335", // Red
			"#FBBC05", // Yellow
			"#34A853", // Green
			"#673AB7", // Purple
			"#3F51B5", // Indigo
			"#00BCD4", // Cyan
			"#009688", // Teal
			"#FF5722", // Deep Orange
		},
		EdgeColors: []string{
			"#555555",
			"#8E8E8E",
			"#26A69A",
			"#AB47BC",
			"#BBBBBB",
		},
		Highlight:  "#F4511E",
		Background: "#f8f8f8",
		Foreground: "#212121",
	}
}

// SurrealPalette returns a dark palette with saturated colors
func SurrealPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#FF6D00", // Amber
			"#2979FF", // Blue
			"#00E676", // Green
			"#F50057", // Pink
			"#651FFF", // Deep Purple
			"#C6FF00", // Lime
			"#FF3D00", // Deep Orange
			"#00B0FF", // Light Blue
			"#76FF03", // Light Green
		},
		EdgeColors: []string{
			"#9E9E9E",
			"#616161",
			"#00BFA5",
			"#9C27B0",
			"#424242",
		},
		Highlight:  "#FFEA00",
		Background: "#212121",
		Foreground: "#EEEEEE",
	}
}

// GetPalette returns a palette by name.
func GetPalette(name string) (*Palette, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return DefaultPalette(), nil
	case "surreal":
		return SurrealPalette(), nil
	default:
		return nil, fmt.Errorf("unknown palette: %s", name)
	}
}

// GroupColor returns a stable color for a node group. Nodes without a group
// are colored by kind.
func (p *Palette) GroupColor(n models.Node) string {
	if len(p.NodeColors) == 0 {
		return p.Foreground
	}
	key := n.Group
	if key == "" {
		key = n.Kind.String()
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return p.NodeColors[h.Sum32()%uint32(len(p.NodeColors))]
}

// EdgeColor returns the color of an edge type.
func (p *Palette) EdgeColor(t models.EdgeType) string {
	idx := 4
	switch t {
	case models.EdgePrimary:
		idx = 0
	case models.EdgeCrossReference:
		idx = 1
	case models.EdgeThematic:
		idx = 2
	case models.EdgeArchetypal:
		idx = 3
	}
	if idx >= len(p.EdgeColors) {
		return p.Foreground
	}
	return p.EdgeColors[idx]
}

// JSONProcessor handles JSON datasets
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData parses a JSON dataset
func (p *JSONProcessor) ProcessData(data []byte) (*models.Dataset, error) {
	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return finish(&ds, "JSON Import")
}

// YAMLProcessor handles YAML datasets. The document shape matches the JSON
// one.
type YAMLProcessor struct{}

// NewYAMLProcessor creates a new YAML processor
func NewYAMLProcessor() *YAMLProcessor {
	return &YAMLProcessor{}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData parses a YAML dataset
func (p *YAMLProcessor) ProcessData(data []byte) (*models.Dataset, error) {
	var ds models.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	return finish(&ds, "YAML Import")
}

// CSVProcessor handles edge-list CSV data. Required columns are source and
// target; type, meaning, influence and chronology are optional.
type CSVProcessor struct{}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor() *CSVProcessor {
	return &CSVProcessor{}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData processes CSV data. The first source becomes the root.
func (p *CSVProcessor) ProcessData(data []byte) (*models.Dataset, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "source", "from", "src":
			cols["source"] = i
		case "target", "to", "dst":
			cols["target"] = i
		case "type", "kind", "relation":
			cols["type"] = i
		case "meaning":
			cols["meaning"] = i
		case "influence":
			cols["influence"] = i
		case "chronology", "time":
			cols["chronology"] = i
		}
	}
	if _, ok := cols["source"]; !ok {
		return nil, fmt.Errorf("CSV must contain source and target columns")
	}
	if _, ok := cols["target"]; !ok {
		return nil, fmt.Errorf("CSV must contain source and target columns")
	}

	b := newEdgeListBuilder("CSV Import")
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}

		cell := func(name string) string {
			if i, ok := cols[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		edge := models.NewEdge(cell("source"), cell("target"), models.EdgeType(strings.ToLower(cell("type"))))
		if edge.Source == "" || edge.Target == "" {
			return nil, fmt.Errorf("CSV row %d: empty endpoint", line)
		}
		if edge.Type == "" {
			edge.Type = models.EdgePrimary
		}
		for name, dst := range map[string]**float64{
			"meaning":    &edge.Meaning,
			"influence":  &edge.Influence,
			"chronology": &edge.Chronology,
		} {
			raw := cell(name)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("CSV row %d: %s: %w", line, name, err)
			}
			*dst = models.Score(v)
		}
		b.add(edge)
	}
	return b.build()
}

// LogProcessor handles plain-text relationship logs, one relation per line:
//
//	A -> B   primary lineage
//	A => B   cross reference
//	A ~> B   thematic wave
//	A *> B   archetypal link
//
// Blank lines, lines starting with # and unmatched lines are skipped.
type LogProcessor struct{}

// NewLogProcessor creates a new log processor
func NewLogProcessor() *LogProcessor {
	return &LogProcessor{}
}

// GetName returns the name of the processor
func (p *LogProcessor) GetName() string {
	return "Log Processor"
}

var logPatterns = []struct {
	separator string
	edgeType  models.EdgeType
}{
	{" -> ", models.EdgePrimary},
	{" => ", models.EdgeCrossReference},
	{" ~> ", models.EdgeThematic},
	{" *> ", models.EdgeArchetypal},
}

// ProcessData processes log data. The first source becomes the root.
func (p *LogProcessor) ProcessData(data []byte) (*models.Dataset, error) {
	b := newEdgeListBuilder("Log Import")

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		for _, pattern := range logPatterns {
			parts := strings.Split(line, pattern.separator)
			if len(parts) != 2 {
				continue
			}
			source, target := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			if source != "" && target != "" {
				b.add(models.NewEdge(source, target, pattern.edgeType))
			}
			break
		}
	}
	return b.build()
}

// GetProcessor returns the appropriate processor for the given format or
// file extension
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		return NewJSONProcessor(), nil
	case "yaml", "yml":
		return NewYAMLProcessor(), nil
	case "csv":
		return NewCSVProcessor(), nil
	case "log", "txt":
		return NewLogProcessor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadFile reads a dataset, picking the processor from the file extension.
func LoadFile(path string) (*models.Dataset, error) {
	proc, err := GetProcessor(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := proc.ProcessData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Sample returns the built-in dataset.
func Sample() (*models.Dataset, error) {
	return NewJSONProcessor().ProcessData(sampleJSON)
}

// finish fills in missing names and edge types, then validates.
func finish(ds *models.Dataset, name string) (*models.Dataset, error) {
	if ds.Name == "" {
		ds.Name = name
	}
	defaultType(ds.Lineage, models.EdgePrimary)
	defaultType(ds.Resonance, models.EdgeCrossReference)
	defaultType(ds.Waves, models.EdgeThematic)

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return ds, nil
}

func defaultType(edges []models.Edge, t models.EdgeType) {
	for i := range edges {
		if edges[i].Type == "" {
			edges[i].Type = t
		}
	}
}

// edgeListBuilder creates nodes on first sight and files edges by type.
type edgeListBuilder struct {
	ds *models.Dataset
}

func newEdgeListBuilder(name string) *edgeListBuilder {
	return &edgeListBuilder{ds: models.NewDataset(name, "")}
}

func (b *edgeListBuilder) add(e models.Edge) {
	if b.ds.Root == "" {
		b.ds.Root = e.Source
	}
	b.ensure(e.Source)
	b.ensure(e.Target)

	// by convention waves and archetypes are the source side
	if src, err := b.ds.FindNodeByID(e.Source); err == nil && src.Kind == models.KindConcept {
		switch e.Type {
		case models.EdgeThematic:
			src.Kind = models.KindThematic
		case models.EdgeArchetypal:
			src.Kind = models.KindArchetype
		}
	}
	// both endpoints exist, AddEdge cannot fail
	_ = b.ds.AddEdge(e)
}

func (b *edgeListBuilder) ensure(id string) {
	if _, err := b.ds.FindNodeByID(id); err == nil {
		return
	}
	_ = b.ds.AddNode(models.Node{ID: id, Label: id, Kind: models.KindConcept, Layer: models.LayerExempt})
}

// build assigns layers as the breadth-first depth along lineage edges from
// the root. Nodes off the lineage stay layer-exempt.
func (b *edgeListBuilder) build() (*models.Dataset, error) {
	if len(b.ds.Nodes) == 0 {
		return nil, fmt.Errorf("no relationships found")
	}

	adj := graph.NewAdjacency(b.ds.Lineage)
	depth := map[string]int{b.ds.Root: 0}
	queue := []string{b.ds.Root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj.Neighbors(id) {
			if _, seen := depth[next]; !seen {
				depth[next] = depth[id] + 1
				queue = append(queue, next)
			}
		}
	}

	for i := range b.ds.Nodes {
		n := &b.ds.Nodes[i]
		if d, ok := depth[n.ID]; ok && !n.Kind.Heavy() {
			n.Layer = d
		}
	}
	return finish(b.ds, b.ds.Name)
}
