// Package quality runs rule checks over tabular data: missing values,
// duplicate rows, expected value types and numeric ranges.
package quality

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/profiler"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// ValueTypes are the type names a column can be expected to hold
var ValueTypes = []string{"int", "float", "str", "date", "datetime", "timestamp", "bool"}

// NullCount is the number of missing cells in a column
type NullCount struct {
	Column string `json:"column"`
	Nulls  int    `json:"nulls"`
}

// DuplicateGroup is a row that occurs more than once
type DuplicateGroup struct {
	Values   []string `json:"values"`
	DupCount int      `json:"dup_count"`
}

// TypeMismatch is a column whose dominant value type differs from the expected one
type TypeMismatch struct {
	Column   string `json:"column"`
	Expected string `json:"expected"`
	Found    string `json:"found"`
}

func (m TypeMismatch) String() string {
	return fmt.Sprintf("Expected %s, Found %s", m.Expected, m.Found)
}

// Range bounds a numeric column, inclusive
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// RangeViolation is a value outside its column's range
type RangeViolation struct {
	Column string  `json:"column"`
	Row    int     `json:"row"`
	Value  float64 `json:"value"`
}

// CheckNulls counts missing values of the given columns
func CheckNulls(df *models.DataFrame, columns []string) ([]NullCount, error) {
	out := make([]NullCount, 0, len(columns))
	for _, name := range columns {
		values, ok := df.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		n := 0
		for _, v := range values {
			if !v.Valid {
				n++
			}
		}
		out = append(out, NullCount{Column: name, Nulls: n})
	}
	return out, nil
}

// CheckDuplicates groups rows that occur more than once. Rows with a missing
// value are not grouped. Groups are ordered by their values.
func CheckDuplicates(df *models.DataFrame) []DuplicateGroup {
	counts := make(map[string]int)
	groups := make(map[string][]string)
	for _, row := range df.Rows {
		values := make([]string, len(df.Columns))
		complete := true
		for i := range df.Columns {
			if i >= len(row) || !row[i].Valid {
				complete = false
				break
			}
			values[i] = row[i].String
		}
		if !complete {
			continue
		}
		key := strings.Join(values, "\x1f")
		counts[key]++
		groups[key] = values
	}

	var out []DuplicateGroup
	for key, n := range counts {
		if n > 1 {
			out = append(out, DuplicateGroup{Values: groups[key], DupCount: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Values, out[j].Values
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

// ValueType names the type a single cell's text represents
func ValueType(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return "int"
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return "float"
	}
	switch strings.ToLower(s) {
	case "true", "false":
		return "bool"
	}
	if _, ok := profiler.ParseDate(s); ok {
		if strings.Contains(s, ":") {
			return "datetime"
		}
		return "date"
	}
	return "str"
}

// DominantType is the most frequent value type of a column; ties go to the
// alphabetically first name. It is "" for a column without values.
func DominantType(df *models.DataFrame, column string) string {
	values, _ := df.Column(column)
	counts := make(map[string]int)
	for _, v := range values {
		if v.Valid {
			counts[ValueType(v.String)]++
		}
	}
	best, bestN := "", 0
	for name, n := range counts {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}

// CheckTypes compares each column's dominant type to the expected one.
// "timestamp" is accepted as a name for "datetime".
func CheckTypes(df *models.DataFrame, expected map[string]string) []TypeMismatch {
	columns := make([]string, 0, len(expected))
	for c := range expected {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	var out []TypeMismatch
	for _, c := range columns {
		if df.ColumnIndex(c) < 0 {
			continue
		}
		want := expected[c]
		if want == "timestamp" {
			want = "datetime"
		}
		found := DominantType(df, c)
		if found != want {
			out = append(out, TypeMismatch{Column: c, Expected: expected[c], Found: found})
		}
	}
	return out
}

// CheckRanges reports values outside their column's range. Values that are
// not numbers are skipped.
func CheckRanges(df *models.DataFrame, rules map[string]Range) []RangeViolation {
	columns := make([]string, 0, len(rules))
	for c := range rules {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	var out []RangeViolation
	for _, c := range columns {
		values, ok := df.Column(c)
		if !ok {
			continue
		}
		r := rules[c]
		for i, v := range values {
			if !v.Valid {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
			if err != nil {
				continue
			}
			if f < r.Min || f > r.Max {
				out = append(out, RangeViolation{Column: c, Row: i, Value: f})
			}
		}
	}
	return out
}
