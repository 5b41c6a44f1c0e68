package graph

import (
	"sort"
	"sync"

	"github.com/TFMV/pivotgraph/models"
)

// Adjacency is an undirected neighbour index over an active edge set.
type Adjacency struct {
	links map[string][]models.Edge
	Mutex sync.RWMutex
}

// NewAdjacency indexes edges in both directions. Self loops are indexed once.
func NewAdjacency(edges []models.Edge) *Adjacency {
	a := &Adjacency{links: make(map[string][]models.Edge)}
	for _, e := range edges {
		a.AddEdge(e)
	}
	return a
}

// AddEdge appends an edge to the index.
func (a *Adjacency) AddEdge(e models.Edge) {
	a.Mutex.Lock()
	defer a.Mutex.Unlock()
	a.links[e.Source] = append(a.links[e.Source], e)
	if e.Target != e.Source {
		a.links[e.Target] = append(a.links[e.Target], e)
	}
}

// Neighbors returns the sorted ids linked to id, optionally restricted to
// the given edge types.
func (a *Adjacency) Neighbors(id string, types ...models.EdgeType) []string {
	a.Mutex.RLock()
	defer a.Mutex.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range a.links[id] {
		if len(types) > 0 && !hasType(types, e.Type) {
			continue
		}
		if other := e.Other(id); other != "" && other != id {
			seen[other] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of edges incident to id.
func (a *Adjacency) Degree(id string) int {
	a.Mutex.RLock()
	defer a.Mutex.RUnlock()
	return len(a.links[id])
}

func hasType(types []models.EdgeType, t models.EdgeType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}
