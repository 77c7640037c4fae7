package lineage

import (
	"sort"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/yourbasic/graph"
)

// NodeKind tells how a node was resolved
type NodeKind string

const (
	KindUnresolved NodeKind = "unresolved"
	KindView       NodeKind = "view"
	KindTable      NodeKind = "table"
)

// Node is an object reachable from the lineage root
type Node struct {
	Key  string            `json:"key"`
	Name models.ObjectName `json:"-"`
	Kind NodeKind          `json:"kind"`
}

// Label returns the name as first written
func (n Node) Label() string {
	return n.Name.String()
}

// Edge points from a dependency to the object whose definition references it
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Graph is the lineage graph. Nodes are kept in discovery order and edges in
// insertion order; parallel edges are collapsed.
type Graph struct {
	Nodes []Node
	Edges []Edge

	NodeIndexMap map[string]int
	edgeSet      map[Edge]bool
}

// NewGraph creates an empty lineage graph
func NewGraph() *Graph {
	return &Graph{
		NodeIndexMap: make(map[string]int),
		edgeSet:      make(map[Edge]bool),
	}
}

// AddNode returns the index of the node with key, adding it if necessary
func (g *Graph) AddNode(key string, name models.ObjectName) int {
	if idx, ok := g.NodeIndexMap[key]; ok {
		return idx
	}
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Key: key, Name: name, Kind: KindUnresolved})
	g.NodeIndexMap[key] = idx
	return idx
}

// AddEdge adds dependency -> dependent and reports whether it was new
func (g *Graph) AddEdge(from, to int) bool {
	e := Edge{From: from, To: to}
	if g.edgeSet[e] {
		return false
	}
	g.edgeSet[e] = true
	g.Edges = append(g.Edges, e)
	return true
}

// Order returns the number of nodes
func (g *Graph) Order() int {
	return len(g.Nodes)
}

// Mutable materialises the graph for the yourbasic/graph algorithms.
// Vertex i is Nodes[i].
func (g *Graph) Mutable() *graph.Mutable {
	m := graph.New(len(g.Nodes))
	for _, e := range g.Edges {
		m.Add(e.From, e.To)
	}
	return m
}

// HasCycle reports whether any view depends on itself transitively
func (g *Graph) HasCycle() bool {
	return !graph.Acyclic(g.Mutable())
}

// Cycles returns the node keys of every strongly connected component with
// more than one member, or with a self loop
func (g *Graph) Cycles() [][]string {
	var cycles [][]string
	for _, comp := range graph.StrongComponents(g.Mutable()) {
		if len(comp) == 1 && !g.edgeSet[Edge{From: comp[0], To: comp[0]}] {
			continue
		}
		members := append([]int(nil), comp...)
		sort.Ints(members)
		keys := make([]string, 0, len(members))
		for _, idx := range members {
			keys = append(keys, g.Nodes[idx].Key)
		}
		cycles = append(cycles, keys)
	}
	return cycles
}
