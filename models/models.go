// Package models provides data structures for the pivotgraph application.
// It defines the concept graph vocabulary shared by the layout engine, the
// loaders and the renderers.
package models

import (
	"fmt"
)

// LayerExempt marks nodes that are not bound to a depth from the root.
const LayerExempt = -1

// Kind is the closed set of node categories.
type Kind uint8

const (
	KindConcept Kind = iota
	KindScience
	KindThematic
	KindArchetype
	KindPhilosophical
)

var kindNames = [...]string{
	KindConcept:       "concept",
	KindScience:       "science",
	KindThematic:      "thematic",
	KindArchetype:     "archetype",
	KindPhilosophical: "philosophical",
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindConcept, KindScience, KindThematic, KindArchetype, KindPhilosophical}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Heavy reports whether the kind belongs to the archetypal/thematic category,
// which repels its neighbours harder.
func (k Kind) Heavy() bool {
	switch k {
	case KindThematic, KindArchetype:
		return true
	case KindConcept, KindScience, KindPhilosophical:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Node represents a concept in the graph. Nodes are immutable values; the
// physics package wraps them with mutable state.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	Layer int    `json:"layer" yaml:"layer"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// EdgeType is the relationship category of an edge.
type EdgeType string

const (
	EdgePrimary        EdgeType = "primary"
	EdgeCrossReference EdgeType = "cross"
	EdgeThematic       EdgeType = "thematic"
	EdgeArchetypal     EdgeType = "archetypal"
)

// Default scores applied when an edge omits them.
const (
	DefaultMeaning    = 70.0
	DefaultInfluence  = 50.0
	DefaultChronology = 90.0
)

// Edge relates two nodes. Physics treats it as undirected; Source and Target
// keep their order for display.
type Edge struct {
	Source     string   `json:"source" yaml:"source"`
	Target     string   `json:"target" yaml:"target"`
	Type       EdgeType `json:"type" yaml:"type"`
	Meaning    *float64 `json:"meaning,omitempty" yaml:"meaning,omitempty"`
	Influence  *float64 `json:"influence,omitempty" yaml:"influence,omitempty"`
	Chronology *float64 `json:"chronology,omitempty" yaml:"chronology,omitempty"`
}

// Scores holds the 0-100 relationship scores of an edge.
type Scores struct {
	Meaning    float64
	Influence  float64
	Chronology float64
}

// Scores returns the edge scores with defaults filled in.
func (e Edge) Scores() Scores {
	s := Scores{Meaning: DefaultMeaning, Influence: DefaultInfluence, Chronology: DefaultChronology}
	if e.Meaning != nil {
		s.Meaning = *e.Meaning
	}
	if e.Influence != nil {
		s.Influence = *e.Influence
	}
	if e.Chronology != nil {
		s.Chronology = *e.Chronology
	}
	return s
}

// Touches reports whether id is one of the edge endpoints.
func (e Edge) Touches(id string) bool {
	return id != "" && (e.Source == id || e.Target == id)
}

// Other returns the endpoint opposite to id, or "" if id is not an endpoint.
func (e Edge) Other(id string) string {
	switch id {
	case e.Source:
		return e.Target
	case e.Target:
		return e.Source
	}
	return ""
}

// Metric selects the score combination used for edge weights and filtering.
type Metric string

const (
	MetricCombined   Metric = "combined"
	MetricMeaning    Metric = "meaning"
	MetricInfluence  Metric = "influence"
	MetricChronology Metric = "chronology"
)

// Metrics returns the recognised metrics.
func Metrics() []Metric {
	return []Metric{MetricCombined, MetricMeaning, MetricInfluence, MetricChronology}
}

// Known reports whether m is one of the recognised metrics.
func (m Metric) Known() bool {
	switch m {
	case MetricCombined, MetricMeaning, MetricInfluence, MetricChronology:
		return true
	}
	return false
}

// ParseMetric accepts any string. Unrecognised metrics are kept as-is and
// handled by the documented fallbacks of the weighting functions.
func ParseMetric(s string) Metric {
	if s == "" {
		return MetricCombined
	}
	return Metric(s)
}

// Dataset is the static concept graph: one node list and three edge lists.
type Dataset struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Root      string `json:"root" yaml:"root"`
	Nodes     []Node `json:"nodes" yaml:"nodes"`
	Lineage   []Edge `json:"lineage" yaml:"lineage"`
	Resonance []Edge `json:"resonance,omitempty" yaml:"resonance,omitempty"`
	Waves     []Edge `json:"waves,omitempty" yaml:"waves,omitempty"`
}

// FilterState controls which part of the dataset is active.
type FilterState struct {
	// MaxLayer caps node depth. Negative means uncapped.
	MaxLayer            int    `json:"max_layer"`
	ShowCrossReferences bool   `json:"show_cross_references"`
	ShowThematic        bool   `json:"show_thematic"`
	ShowArchetypes      bool   `json:"show_archetypes"`
	HiddenKinds         []Kind `json:"hidden_kinds,omitempty"`
	Metric              Metric `json:"metric"`
}

// DefaultFilter shows everything under the combined metric.
func DefaultFilter() FilterState {
	return FilterState{
		MaxLayer:            -1,
		ShowCrossReferences: true,
		ShowThematic:        true,
		ShowArchetypes:      true,
		Metric:              MetricCombined,
	}
}

// Hides reports whether nodes of kind k are filtered out.
func (f FilterState) Hides(k Kind) bool {
	if k == KindArchetype && !f.ShowArchetypes {
		return true
	}
	for _, h := range f.HiddenKinds {
		if h == k {
			return true
		}
	}
	return false
}

// ViewState is the user-controlled perspective: focus, metric and filters.
// It is owned by whoever drives a simulation and passed explicitly.
type ViewState struct {
	Focus     string      `json:"focus"`
	Secondary string      `json:"secondary,omitempty"`
	Metric    Metric      `json:"metric"`
	Filter    FilterState `json:"filter"`
}

// NewViewState focuses on root with default filters.
func NewViewState(root string) *ViewState {
	return &ViewState{
		Focus:  root,
		Metric: MetricCombined,
		Filter: DefaultFilter(),
	}
}
