package models

import (
	"database/sql"
	"strings"
)

// SourceType identifies a catalog backend
type SourceType string

const (
	Teradata   SourceType = "teradata"
	AzureSQL   SourceType = "azuresql"
	Databricks SourceType = "databricks"
	MySQL      SourceType = "mysql"
	Postgres   SourceType = "postgres"
	SQLite     SourceType = "sqlite"
)

// SourceTypes lists every supported backend in display order
var SourceTypes = []SourceType{Teradata, AzureSQL, Databricks, MySQL, Postgres, SQLite}

// DisplayName returns the label shown to analysts
func (s SourceType) DisplayName() string {
	switch s {
	case Teradata:
		return "Teradata"
	case AzureSQL:
		return "Azure SQL DB"
	case Databricks:
		return "Databricks"
	case MySQL:
		return "MySQL"
	case Postgres:
		return "PostgreSQL"
	case SQLite:
		return "SQLite"
	default:
		return string(s)
	}
}

// ParseSourceType accepts either the key or the display name of a source
func ParseSourceType(s string) (SourceType, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch key {
	case "azuresqldb":
		key = string(AzureSQL)
	case "postgresql":
		key = string(Postgres)
	}
	for _, st := range SourceTypes {
		if string(st) == key {
			return st, true
		}
	}
	return "", false
}

// ObjectName is a schema-qualified or bare database object identifier.
// Comparison is case-sensitive; no folding is applied.
type ObjectName struct {
	Schema string
	Object string
}

// ParseObjectName splits a raw identifier at its first dot
func ParseObjectName(raw string) ObjectName {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "."); idx >= 0 {
		return ObjectName{Schema: raw[:idx], Object: raw[idx+1:]}
	}
	return ObjectName{Object: raw}
}

// HasSchema reports whether the name was written with a schema
func (n ObjectName) HasSchema() bool {
	return n.Schema != ""
}

// String returns the name as it was written
func (n ObjectName) String() string {
	if n.Schema == "" {
		return n.Object
	}
	return n.Schema + "." + n.Object
}

// Split returns the schema and object, substituting fallback for a missing schema
func (n ObjectName) Split(fallback string) (string, string) {
	if n.Schema == "" {
		return fallback, n.Object
	}
	return n.Schema, n.Object
}

// Qualified returns schema.object with fallback applied
func (n ObjectName) Qualified(fallback string) string {
	schema, object := n.Split(fallback)
	return schema + "." + object
}

// IsZero reports whether the name is empty
func (n ObjectName) IsZero() bool {
	return n.Object == "" && n.Schema == ""
}

// ColumnMeta describes one column of a base table
type ColumnMeta struct {
	Name              string `json:"name" yaml:"name"`
	Format            string `json:"format,omitempty" yaml:"format,omitempty"`
	Type              string `json:"type" yaml:"type"`
	Length            *int64 `json:"length,omitempty" yaml:"length,omitempty"`
	Nullable          bool   `json:"nullable" yaml:"nullable"`
	CompressValueList string `json:"compress_value_list,omitempty" yaml:"compress_value_list,omitempty"`
}

// DataFrame is a small in-memory table used by profiling and quality checks.
// A cell with Valid=false is a missing value.
type DataFrame struct {
	Columns []string
	Rows    [][]sql.NullString
}

// ColumnIndex returns the position of a column, or -1
func (df *DataFrame) ColumnIndex(name string) int {
	for i, c := range df.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all cells of the named column
func (df *DataFrame) Column(name string) ([]sql.NullString, bool) {
	idx := df.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]sql.NullString, len(df.Rows))
	for i, row := range df.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, true
}

// Head returns a frame with at most n rows
func (df *DataFrame) Head(n int) *DataFrame {
	if n > len(df.Rows) {
		n = len(df.Rows)
	}
	return &DataFrame{Columns: df.Columns, Rows: df.Rows[:n]}
}
