package lineage

import (
	"regexp"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// dependencyPattern captures the identifier after FROM or JOIN.
// It is a heuristic, not a SQL parser: aliases of derived tables and CTE names
// are captured too and later fall through to a failed table lookup.
var dependencyPattern = regexp.MustCompile(`(?i)\bFROM\s+([\w\.]+)|\bJOIN\s+([\w\.]+)`)

// ExtractDependencies returns the distinct object names referenced by FROM and
// JOIN clauses, in order of first appearance
func ExtractDependencies(sqlText string) []models.ObjectName {
	seen := make(map[string]bool)
	var deps []models.ObjectName

	for _, match := range dependencyPattern.FindAllStringSubmatch(sqlText, -1) {
		raw := match[1]
		if raw == "" {
			raw = match[2]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true
		deps = append(deps, models.ParseObjectName(raw))
	}

	return deps
}
