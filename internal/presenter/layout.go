// Package presenter turns a lineage result into things people look at: a 2D
// layout for the dashboard graph, an ordered text report and Graphviz DOT.
package presenter

import (
	"sort"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/lineage"
	"github.com/yourbasic/graph"
)

const (
	// LayerSpacing is the horizontal distance between layers
	LayerSpacing = 240.0
	// NodeSpacing is the vertical distance between nodes of one layer
	NodeSpacing = 90.0
)

// Position places one node. Layer 0 holds the upstream sources; the root is
// in the last layer.
type Position struct {
	Key   string           `json:"key"`
	Label string           `json:"label"`
	Kind  lineage.NodeKind `json:"kind"`
	Layer int              `json:"layer"`
	Slot  int              `json:"slot"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
}

// Layout is a deterministic layered drawing of a lineage graph
type Layout struct {
	Positions []Position `json:"positions"`
	Layers    int        `json:"layers"`
}

// ComputeLayout assigns each node the length of the longest dependency chain
// leading into it. Members of a cycle share a layer. Within a layer nodes are
// ordered by discovery.
func ComputeLayout(g *lineage.Graph) *Layout {
	layout := &Layout{}
	if g == nil || g.Order() == 0 {
		return layout
	}

	// Collapse cycles so the layering runs on a DAG
	components := graph.StrongComponents(g.Mutable())
	componentOf := make([]int, g.Order())
	for c, members := range components {
		for _, v := range members {
			componentOf[v] = c
		}
	}

	condensed := graph.New(len(components))
	for _, e := range g.Edges {
		from, to := componentOf[e.From], componentOf[e.To]
		if from != to {
			condensed.Add(from, to)
		}
	}

	order, ok := graph.TopSort(condensed)
	if !ok {
		// Unreachable after condensation; fall back to discovery order
		order = make([]int, len(components))
		for i := range order {
			order[i] = i
		}
	}

	componentLayer := make([]int, len(components))
	for _, c := range order {
		condensed.Visit(c, func(w int, _ int64) bool {
			if componentLayer[c]+1 > componentLayer[w] {
				componentLayer[w] = componentLayer[c] + 1
			}
			return false
		})
	}

	byLayer := make(map[int][]int)
	for v := range g.Nodes {
		layer := componentLayer[componentOf[v]]
		byLayer[layer] = append(byLayer[layer], v)
		if layer+1 > layout.Layers {
			layout.Layers = layer + 1
		}
	}

	for layer := 0; layer < layout.Layers; layer++ {
		members := byLayer[layer]
		sort.Ints(members)
		for slot, v := range members {
			node := g.Nodes[v]
			layout.Positions = append(layout.Positions, Position{
				Key:   node.Key,
				Label: node.Label(),
				Kind:  node.Kind,
				Layer: layer,
				Slot:  slot,
				X:     float64(layer) * LayerSpacing,
				Y:     float64(slot) * NodeSpacing,
			})
		}
	}

	return layout
}
