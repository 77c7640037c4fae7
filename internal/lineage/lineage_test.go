package lineage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/catalog"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

// Helper function to create a test logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

// Helper function to build lineage over a snapshot
func buildLineage(t *testing.T, snap *catalog.Snapshot, root string) *Result {
	t.Helper()
	b := NewBuilder(snap, "dbc", createTestLogger())
	result, err := b.Build(context.Background(), models.ParseObjectName(root))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return result
}

// Helper function to look up a view record by node key
func findView(r *Result, key string) (ViewRecord, bool) {
	for _, v := range r.Views {
		if v.Key == key {
			return v, true
		}
	}
	return ViewRecord{}, false
}

// Helper function to look up a table record by node key
func findTable(r *Result, key string) (TableRecord, bool) {
	for _, t := range r.Tables {
		if t.Key == key {
			return t, true
		}
	}
	return TableRecord{}, false
}

func nodeByKey(g *Graph, key string) (Node, bool) {
	idx, ok := g.NodeIndexMap[key]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[idx], true
}

func hasEdge(g *Graph, fromKey, toKey string) bool {
	from, okFrom := g.NodeIndexMap[fromKey]
	to, okTo := g.NodeIndexMap[toKey]
	return okFrom && okTo && g.edgeSet[Edge{From: from, To: to}]
}

func viewKeys(r *Result) []string {
	keys := make([]string, 0, len(r.Views))
	for _, v := range r.Views {
		keys = append(keys, v.Key)
	}
	return keys
}

func threeColumns() []models.ColumnMeta {
	return []models.ColumnMeta{
		{Name: "order_id", Type: "I"},
		{Name: "customer_id", Type: "I"},
		{Name: "amount", Type: "D", Nullable: true},
	}
}

func TestExtractDependencies(t *testing.T) {
	sqlText := `REPLACE VIEW sales.v_orders AS
		SELECT o.*, c.name
		from sales.orders o
		INNER JOIN  crm.customers c ON c.id = o.customer_id
		LEFT join sales.orders x ON 1 = 1
		WHERE o.id IN (SELECT id FROM audit)`

	deps := ExtractDependencies(sqlText)
	got := make([]string, 0, len(deps))
	for _, d := range deps {
		got = append(got, d.String())
	}

	expected := []string{"sales.orders", "crm.customers", "audit"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if deps[2].HasSchema() {
		t.Error("Expected bare name for audit")
	}
}

func TestExtractDependenciesIdempotent(t *testing.T) {
	sqlText := "SELECT * FROM a JOIN b ON a.id = b.id JOIN a ON 1=1"
	first := ExtractDependencies(sqlText)
	second := ExtractDependencies(sqlText)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extraction is not idempotent: %v vs %v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("Expected duplicates collapsed to 2 names, got %d", len(first))
	}
}

func TestExtractDependenciesKnownFalsePositives(t *testing.T) {
	// A subquery is not captured; a FROM inside it is.
	deps := ExtractDependencies("SELECT * FROM (SELECT id FROM t1) AS x")
	if len(deps) != 1 || deps[0].String() != "t1" {
		t.Errorf("Expected only t1, got %v", deps)
	}

	if deps := ExtractDependencies("SELECT 1"); len(deps) != 0 {
		t.Errorf("Expected no dependencies, got %v", deps)
	}

	// Identifiers that merely contain the keyword are not references
	if deps := ExtractDependencies("SELECT fromage, joiner FROM t"); len(deps) != 1 {
		t.Errorf("Expected only t, got %v", deps)
	}
}

func TestBuildTerminatesOnCycle(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["A"] = "SELECT * FROM B"
	snap.Views["B"] = "SELECT * FROM A"

	result := buildLineage(t, snap, "A")

	if !reflect.DeepEqual(viewKeys(result), []string{"dbc.A", "dbc.B"}) {
		t.Errorf("Expected each view exactly once, got %v", viewKeys(result))
	}
	if snap.ViewCalls("A") != 1 || snap.ViewCalls("B") != 1 {
		t.Error("Expected each view fetched once")
	}
	if !result.Graph.HasCycle() {
		t.Error("Expected the cycle to be detected")
	}
	cycles := result.Graph.Cycles()
	if len(cycles) != 1 || !reflect.DeepEqual(cycles[0], []string{"dbc.A", "dbc.B"}) {
		t.Errorf("Unexpected cycles %v", cycles)
	}
}

func TestBuildDiamondFetchesSharedDependencyOnce(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["A"] = "SELECT * FROM B JOIN C ON B.id = C.id"
	snap.Views["B"] = "SELECT * FROM D"
	snap.Views["C"] = "SELECT * FROM D"
	snap.Views["D"] = "SELECT * FROM base"
	snap.Tables["dbc.base"] = []models.ColumnMeta{{Name: "id", Type: "I"}}

	result := buildLineage(t, snap, "A")

	if snap.ViewCalls("D") != 1 {
		t.Errorf("Expected D fetched once, got %d", snap.ViewCalls("D"))
	}
	for _, e := range [][2]string{{"dbc.D", "dbc.B"}, {"dbc.D", "dbc.C"}, {"dbc.B", "dbc.A"}, {"dbc.C", "dbc.A"}, {"dbc.base", "dbc.D"}} {
		if !hasEdge(result.Graph, e[0], e[1]) {
			t.Errorf("Expected edge %s -> %s", e[0], e[1])
		}
	}
	if len(result.Graph.Edges) != 5 {
		t.Errorf("Expected 5 edges, got %d", len(result.Graph.Edges))
	}
	if result.Graph.HasCycle() {
		t.Error("Diamond must not be reported as a cycle")
	}
	if len(result.Tables) != 1 || result.Tables[0].Key != "dbc.base" {
		t.Errorf("Unexpected tables %+v", result.Tables)
	}
	if keys := viewKeys(result); keys[0] != "dbc.A" || len(keys) != 4 {
		t.Errorf("Expected root first among 4 views, got %v", keys)
	}
}

func TestBuildFallsBackToTable(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Tables["sales.orders"] = threeColumns()

	result := buildLineage(t, snap, "sales.orders")

	if len(result.Views) != 0 {
		t.Errorf("Expected no views, got %v", viewKeys(result))
	}
	table, ok := findTable(result, "sales.orders")
	if !ok {
		t.Fatal("Expected sales.orders in table records")
	}
	if len(table.Columns) != 3 || table.Schema != "sales" || table.Table != "orders" {
		t.Errorf("Unexpected table record %+v", table)
	}
	if node, _ := nodeByKey(result.Graph, "sales.orders"); node.Kind != KindTable {
		t.Errorf("Expected table node, got %s", node.Kind)
	}
	if result.Empty() {
		t.Error("A table root is not an empty result")
	}
}

func TestBuildDefaultsSchema(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Tables["dbc.orders"] = threeColumns()

	result := buildLineage(t, snap, "orders")

	if snap.TableCalls("dbc.orders") != 1 {
		t.Error("Expected columns fetched with the fallback schema")
	}
	if _, ok := findTable(result, "dbc.orders"); !ok {
		t.Error("Expected dbc.orders table record")
	}
}

func TestBuildDropsDanglingReference(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["sales.v"] = "SELECT * FROM sales.ghost JOIN sales.orders ON 1=1"
	snap.Tables["sales.orders"] = threeColumns()

	result := buildLineage(t, snap, "sales.v")

	if _, ok := findView(result, "sales.ghost"); ok {
		t.Error("Dangling reference must not be a view record")
	}
	if _, ok := findTable(result, "sales.ghost"); ok {
		t.Error("Dangling reference must not be a table record")
	}
	if len(result.Advisories) != 0 {
		t.Errorf("Not found is not an advisory, got %v", result.Advisories)
	}
	node, ok := nodeByKey(result.Graph, "sales.ghost")
	if !ok || node.Kind != KindUnresolved {
		t.Error("Expected dangling node to stay in the graph unresolved")
	}
	if _, ok := findTable(result, "sales.orders"); !ok {
		t.Error("Expected sibling branch to be resolved")
	}
}

func TestBuildReportsViewsRootFirst(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["A"] = "SELECT * FROM B"
	snap.Views["B"] = "SELECT * FROM C"
	snap.Views["C"] = "SELECT * FROM t1 JOIN t2 ON 1=1"
	snap.Tables["dbc.t1"] = threeColumns()
	snap.Tables["dbc.t2"] = threeColumns()

	result := buildLineage(t, snap, "A")

	if !reflect.DeepEqual(viewKeys(result), []string{"dbc.A", "dbc.B", "dbc.C"}) {
		t.Errorf("Expected [A B C], got %v", viewKeys(result))
	}
	if len(result.Tables) != 2 || result.Tables[0].Key != "dbc.t1" || result.Tables[1].Key != "dbc.t2" {
		t.Errorf("Expected tables in discovery order, got %+v", result.Tables)
	}
}

func TestBuildRecordsAdvisories(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["A"] = "SELECT * FROM B JOIN C ON 1=1 JOIN D ON 1=1"
	snap.Tables["dbc.B"] = threeColumns()
	snap.Tables["dbc.D"] = threeColumns()
	snap.Failures = map[string]error{
		"B":     errors.New("socket closed"),
		"dbc.C": errors.New("timeout"),
	}

	result := buildLineage(t, snap, "A")

	if len(result.Advisories) != 2 {
		t.Fatalf("Expected 2 advisories, got %v", result.Advisories)
	}
	if result.Advisories[0].Object != "dbc.B" || result.Advisories[0].Operation != opViewDefinition {
		t.Errorf("Unexpected first advisory %+v", result.Advisories[0])
	}
	// A failed view lookup falls through to the table lookup
	if _, ok := findTable(result, "dbc.B"); !ok {
		t.Error("Expected B resolved as a table after the view lookup failed")
	}
	if _, ok := findTable(result, "dbc.C"); ok {
		t.Error("Expected C dropped after the table lookup failed")
	}
	if _, ok := findTable(result, "dbc.D"); !ok {
		t.Error("Expected sibling D resolved")
	}
}

func TestBuildEmptyRoot(t *testing.T) {
	result := buildLineage(t, catalog.NewSnapshot(), "nothing.here")
	if !result.Empty() {
		t.Error("Expected empty result")
	}

	result = buildLineage(t, catalog.NewSnapshot(), "")
	if !result.Empty() || result.Graph.Order() != 0 {
		t.Error("Expected empty result for a blank root")
	}
}

func TestBuildMaxDepth(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["A"] = "SELECT * FROM B"
	snap.Views["B"] = "SELECT * FROM C"
	snap.Views["C"] = "SELECT * FROM t1"

	b := NewBuilder(snap, "dbc", createTestLogger())
	b.MaxDepth = 1
	result, err := b.Build(context.Background(), models.ParseObjectName("A"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !reflect.DeepEqual(viewKeys(result), []string{"dbc.A", "dbc.B"}) {
		t.Errorf("Expected expansion to stop at B, got %v", viewKeys(result))
	}
	if !result.Truncated {
		t.Error("Expected Truncated to be set")
	}
	if snap.ViewCalls("C") != 0 {
		t.Error("C must not be fetched beyond the depth limit")
	}
}

func TestBuildHonoursCancellation(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["A"] = "SELECT * FROM B"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(snap, "dbc", createTestLogger())
	result, err := b.Build(ctx, models.ParseObjectName("A"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if result == nil {
		t.Error("Expected a partial result alongside the error")
	}
}

func TestGraphCollapsesParallelEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddNode("dbc.a", models.ParseObjectName("a"))
	b := g.AddNode("dbc.b", models.ParseObjectName("b"))
	if again := g.AddNode("dbc.a", models.ParseObjectName("dbc.a")); again != a {
		t.Error("Expected the same index for an existing key")
	}
	if !g.AddEdge(b, a) || g.AddEdge(b, a) {
		t.Error("Expected the second identical edge to be rejected")
	}
	if g.Mutable().Order() != 2 {
		t.Error("Expected 2 vertices in the materialised graph")
	}
	if n, _ := nodeByKey(g, "dbc.a"); n.Label() != "a" {
		t.Errorf("Expected the first-seen spelling, got %s", n.Label())
	}
}
