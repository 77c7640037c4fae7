// Package lineage resolves the objects a view is built from by following the
// FROM and JOIN references of view definitions down to base tables.
package lineage

import (
	"context"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/catalog"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	opViewDefinition = "fetch view definition"
	opTableColumns   = "fetch table columns"
)

// Builder resolves lineage against a catalog. A Builder keeps no state between
// calls to Build.
type Builder struct {
	Catalog        catalog.Catalog
	FallbackSchema string
	// MaxDepth limits how many view levels below the root are expanded; 0 is unlimited
	MaxDepth int
	Logger   *logrus.Logger
}

// NewBuilder creates a new lineage builder
func NewBuilder(cat catalog.Catalog, fallbackSchema string, logger *logrus.Logger) *Builder {
	return &Builder{
		Catalog:        cat,
		FallbackSchema: fallbackSchema,
		Logger:         logger,
	}
}

// frame is one view whose dependencies are being walked
type frame struct {
	node  int
	key   string
	deps  []models.ObjectName
	next  int
	depth int
}

// build holds the accumulators of one Build call
type build struct {
	*Builder
	ctx       context.Context
	result    *Result
	visited   map[string]bool
	views     map[string]ViewRecord
	completed []string
}

// Build resolves root depth-first. Catalog failures become advisories; the
// only error returned is the context's.
func (b *Builder) Build(ctx context.Context, root models.ObjectName) (*Result, error) {
	st := &build{
		Builder: b,
		ctx:     ctx,
		result:  &Result{Root: root, Graph: NewGraph()},
		visited: make(map[string]bool),
		views:   make(map[string]ViewRecord),
	}
	if root.IsZero() {
		return st.result, nil
	}

	b.Logger.Infof("Resolving lineage for %s", root)

	var stack []*frame
	rootIdx := st.result.Graph.AddNode(st.key(root), root)
	if f := st.resolve(root, rootIdx, 0); f != nil {
		stack = append(stack, f)
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return st.finish(), err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.deps) {
			stack = stack[:len(stack)-1]
			st.completed = append(st.completed, top.key)
			continue
		}

		dep := top.deps[top.next]
		top.next++

		depIdx := st.result.Graph.AddNode(st.key(dep), dep)
		st.result.Graph.AddEdge(depIdx, top.node)

		if f := st.resolve(dep, depIdx, top.depth+1); f != nil {
			stack = append(stack, f)
		}
	}

	if err := ctx.Err(); err != nil {
		return st.finish(), err
	}

	result := st.finish()
	if result.Empty() {
		b.Logger.Warnf("%s (%s)", NoLineageMessage, root)
	} else {
		b.Logger.Infof("Resolved %d views and %d tables for %s", len(result.Views), len(result.Tables), root)
		if result.Graph.HasCycle() {
			b.Logger.Warnf("Circular view references found under %s", root)
		}
	}
	return result, nil
}

func (st *build) key(name models.ObjectName) string {
	return name.Qualified(st.FallbackSchema)
}

// resolve visits one name. It returns a frame when the name is a view whose
// dependencies still need walking.
func (st *build) resolve(name models.ObjectName, idx int, depth int) *frame {
	key := st.key(name)
	if st.visited[key] {
		return nil
	}
	st.visited[key] = true

	if err := st.ctx.Err(); err != nil {
		return nil
	}

	definition, err := st.Catalog.FetchViewDefinition(st.ctx, name)
	if err != nil {
		st.advise(key, opViewDefinition, err)
		definition = ""
	}

	if definition != "" {
		deps := ExtractDependencies(definition)
		st.views[key] = ViewRecord{Key: key, Name: name, Definition: definition, Dependencies: deps}
		st.result.Graph.Nodes[idx].Kind = KindView
		st.Logger.Debugf("%s is a view with %d references", key, len(deps))

		if st.MaxDepth > 0 && depth >= st.MaxDepth && len(deps) > 0 {
			st.Logger.Warningf("Not expanding %s: maximum depth %d reached", key, st.MaxDepth)
			st.result.Truncated = true
			st.completed = append(st.completed, key)
			return nil
		}
		return &frame{node: idx, key: key, deps: deps, depth: depth}
	}

	schema, table := name.Split(st.FallbackSchema)
	columns, err := st.Catalog.FetchTableColumns(st.ctx, schema, table)
	if err != nil {
		st.advise(key, opTableColumns, err)
		return nil
	}
	if len(columns) == 0 {
		st.Logger.Debugf("%s resolved to neither a view nor a table", key)
		return nil
	}

	st.result.Tables = append(st.result.Tables, TableRecord{Key: key, Schema: schema, Table: table, Columns: columns})
	st.result.Graph.Nodes[idx].Kind = KindTable
	return nil
}

func (st *build) advise(key, op string, err error) {
	st.Logger.Warningf("Could not %s for %s: %v", op, key, err)
	st.result.Advisories = append(st.result.Advisories, Advisory{Object: key, Operation: op, Message: err.Error()})
}

// finish orders the views root first: reverse of the order in which their
// dependency walks completed
func (st *build) finish() *Result {
	views := make([]ViewRecord, 0, len(st.views))
	seen := make(map[string]bool)
	for i := len(st.completed) - 1; i >= 0; i-- {
		key := st.completed[i]
		if seen[key] {
			continue
		}
		seen[key] = true
		views = append(views, st.views[key])
	}
	// Views still on the stack when the walk was cancelled
	for _, node := range st.result.Graph.Nodes {
		if v, ok := st.views[node.Key]; ok && !seen[node.Key] {
			views = append(views, v)
		}
	}
	st.result.Views = views
	return st.result
}
