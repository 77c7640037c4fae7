package lineage

import (
	"fmt"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// NoLineageMessage is shown when the root resolves to nothing
const NoLineageMessage = "No view or table definitions found."

// ViewRecord holds the definition of an object resolved as a view
type ViewRecord struct {
	Key          string              `json:"key"`
	Name         models.ObjectName   `json:"-"`
	Definition   string              `json:"definition"`
	Dependencies []models.ObjectName `json:"-"`
}

// TableRecord holds the columns of an object resolved as a base table
type TableRecord struct {
	Key     string              `json:"key"`
	Schema  string              `json:"schema"`
	Table   string              `json:"table"`
	Columns []models.ColumnMeta `json:"columns"`
}

// Advisory is a non-fatal catalog failure for one object
type Advisory struct {
	Object    string `json:"object"`
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s: %s failed: %s", a.Object, a.Operation, a.Message)
}

// Result is the outcome of one lineage resolution
type Result struct {
	Root  models.ObjectName
	Graph *Graph
	// Views are ordered root first, deepest dependency last
	Views []ViewRecord
	// Tables are in discovery order
	Tables     []TableRecord
	Advisories []Advisory
	// Truncated is set when MaxDepth stopped the expansion of some view
	Truncated bool
}

// Empty reports whether the root resolved to neither a view nor a table
func (r *Result) Empty() bool {
	return len(r.Views) == 0 && len(r.Tables) == 0
}
