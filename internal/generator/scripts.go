package generator

import (
	"fmt"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// MappedColumn is a source column with its type on the target platform
type MappedColumn struct {
	models.ColumnMeta
	MappedType string `json:"mapped_type"`
}

// MapColumns maps every column type from source to target
func MapColumns(columns []models.ColumnMeta, source, target models.SourceType) []MappedColumn {
	mapping := Mapping(source, target)
	out := make([]MappedColumn, 0, len(columns))
	for _, c := range columns {
		out = append(out, MappedColumn{ColumnMeta: c, MappedType: MapColumnType(c.Type, mapping)})
	}
	return out
}

// GenerateDDL builds the CREATE TABLE statement for the target
func GenerateDDL(columns []MappedColumn, targetSchema, targetTable string) string {
	lines := []string{fmt.Sprintf("CREATE TABLE %s.%s (", targetSchema, targetTable)}
	for i, c := range columns {
		nullable := "NOT NULL"
		if c.Nullable {
			nullable = "NULL"
		}
		line := fmt.Sprintf("  %s %s %s", c.Name, c.MappedType, nullable)
		if i < len(columns)-1 {
			line += ","
		}
		lines = append(lines, line)
	}
	lines = append(lines, ");")
	return strings.Join(lines, "\n")
}

// GenerateETL builds the INSERT ... SELECT statement copying source into target
func GenerateETL(columns []MappedColumn, sourceSchema, sourceTable, targetSchema, targetTable string) string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	list := strings.Join(names, ", ")
	return fmt.Sprintf("INSERT INTO %s.%s (%s)\nSELECT %s FROM %s.%s;",
		targetSchema, targetTable, list, list, sourceSchema, sourceTable)
}
