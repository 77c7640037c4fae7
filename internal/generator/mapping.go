// Package generator produces migration documents for moving a table between
// platforms: type mappings, target DDL, an INSERT ... SELECT load script, a
// source-to-target mapping sheet and sample rows for the new table.
package generator

import (
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

var teradataToAzure = map[string]string{
	"CF": "VARCHAR",
	"CV": "VARCHAR",
	"D":  "DECIMAL(18,4)",
	"I":  "INT",
	"DA": "DATE",
	"TS": "DATETIME",
	"I8": "BIGINT",
	"I1": "TINYINT",
}

var teradataToDatabricks = map[string]string{
	"CF": "STRING",
	"CV": "STRING",
	"D":  "DECIMAL(18,4)",
	"I":  "INT",
	"DA": "DATE",
	"TS": "TIMESTAMP",
	"I8": "BIGINT",
	"I1": "BYTE",
}

var azureToDatabricks = map[string]string{
	"VARCHAR":       "STRING",
	"DECIMAL(18,4)": "DECIMAL(18,4)",
	"INT":           "INT",
	"DATE":          "DATE",
	"DATETIME":      "TIMESTAMP",
	"BIGINT":        "BIGINT",
	"TINYINT":       "BYTE",
}

// Reverse directions. Where two source codes map to one target type the
// variable-length code wins.
var (
	azureToTeradata = map[string]string{
		"VARCHAR":       "CV",
		"DECIMAL(18,4)": "D",
		"INT":           "I",
		"DATE":          "DA",
		"DATETIME":      "TS",
		"BIGINT":        "I8",
		"TINYINT":       "I1",
	}
	databricksToTeradata = map[string]string{
		"STRING":        "CV",
		"DECIMAL(18,4)": "D",
		"INT":           "I",
		"DATE":          "DA",
		"TIMESTAMP":     "TS",
		"BIGINT":        "I8",
		"BYTE":          "I1",
	}
	databricksToAzure = invert(azureToDatabricks)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Mapping returns the type mapping between two platforms. Unsupported pairs,
// including a platform to itself, map nothing.
func Mapping(source, target models.SourceType) map[string]string {
	switch {
	case source == models.Teradata && target == models.AzureSQL:
		return teradataToAzure
	case source == models.AzureSQL && target == models.Teradata:
		return azureToTeradata
	case source == models.Teradata && target == models.Databricks:
		return teradataToDatabricks
	case source == models.Databricks && target == models.Teradata:
		return databricksToTeradata
	case source == models.AzureSQL && target == models.Databricks:
		return azureToDatabricks
	case source == models.Databricks && target == models.AzureSQL:
		return databricksToAzure
	default:
		return map[string]string{}
	}
}

// MapColumnType translates a column type, keeping unknown types as they are
func MapColumnType(columnType string, mapping map[string]string) string {
	if mapped, ok := mapping[strings.TrimSpace(columnType)]; ok {
		return mapped
	}
	return columnType
}
