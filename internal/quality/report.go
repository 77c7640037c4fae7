package quality

import (
	"fmt"
	"io"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/utils"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
)

// Rules selects the checks to run. Duplicates are always checked.
type Rules struct {
	NullColumns []string          `yaml:"null_columns"`
	Types       map[string]string `yaml:"types"`
	Ranges      map[string]Range  `yaml:"ranges"`
}

// ParseTypeRule reads "column=type"
func ParseTypeRule(s string) (string, string, error) {
	col, typ, ok := strings.Cut(s, "=")
	if !ok || col == "" {
		return "", "", fmt.Errorf("invalid type rule %q: expected column=type", s)
	}
	for _, v := range ValueTypes {
		if v == typ {
			return col, typ, nil
		}
	}
	return "", "", fmt.Errorf("invalid type rule %q: type must be one of %s", s, strings.Join(ValueTypes, ", "))
}

// ParseRangeRule reads "column=min:max"
func ParseRangeRule(s string) (string, Range, error) {
	col, bounds, ok := strings.Cut(s, "=")
	if !ok || col == "" {
		return "", Range{}, fmt.Errorf("invalid range rule %q: expected column=min:max", s)
	}
	var r Range
	if _, err := fmt.Sscanf(strings.Replace(bounds, ":", " ", 1), "%g %g", &r.Min, &r.Max); err != nil {
		return "", Range{}, fmt.Errorf("invalid range rule %q: %w", s, err)
	}
	if r.Min > r.Max {
		return "", Range{}, fmt.Errorf("invalid range rule %q: min is greater than max", s)
	}
	return col, r, nil
}

// Report holds the outcome of every check
type Report struct {
	Nulls           []NullCount      `json:"nulls"`
	Duplicates      []DuplicateGroup `json:"duplicates"`
	TypeMismatches  []TypeMismatch   `json:"type_mismatches"`
	RangeViolations []RangeViolation `json:"range_violations"`

	columns []string
	rules   Rules
}

// Passed reports whether no check found a problem
func (r *Report) Passed() bool {
	for _, n := range r.Nulls {
		if n.Nulls > 0 {
			return false
		}
	}
	return len(r.Duplicates) == 0 && len(r.TypeMismatches) == 0 && len(r.RangeViolations) == 0
}

// Run executes the selected checks
func Run(df *models.DataFrame, rules Rules, logger *logrus.Logger) (*Report, error) {
	report := &Report{columns: df.Columns, rules: rules}

	nulls, err := CheckNulls(df, rules.NullColumns)
	if err != nil {
		return nil, err
	}
	report.Nulls = nulls
	report.Duplicates = CheckDuplicates(df)
	report.TypeMismatches = CheckTypes(df, rules.Types)
	report.RangeViolations = CheckRanges(df, rules.Ranges)

	logger.Infof("Quality checks: %d duplicate groups, %d type mismatches, %d range violations",
		len(report.Duplicates), len(report.TypeMismatches), len(report.RangeViolations))
	return report, nil
}

// WriteReport renders the report with one section per check
func WriteReport(out io.Writer, report *Report) error {
	w := utils.NewErrWriter(out)
	fmt.Fprintln(w, utils.Banner("DATA QUALITY CHECKS", 80))

	fmt.Fprintln(w, "\nNull Value Check")
	if len(report.rules.NullColumns) == 0 {
		fmt.Fprintln(w, "No columns selected for null check.")
	} else {
		t := utils.NewTable(w)
		t.AppendHeader(table.Row{"Column", "Nulls"})
		for _, n := range report.Nulls {
			t.AppendRow(table.Row{n.Column, n.Nulls})
		}
		t.Render()
	}

	fmt.Fprintln(w, "\nDuplicate Records")
	if len(report.Duplicates) == 0 {
		fmt.Fprintln(w, "No duplicate records found.")
	} else {
		t := utils.NewTable(w)
		header := table.Row{}
		for _, c := range report.columns {
			header = append(header, c)
		}
		t.AppendHeader(append(header, "dup_count"))
		for _, d := range report.Duplicates {
			row := table.Row{}
			for _, v := range d.Values {
				row = append(row, v)
			}
			t.AppendRow(append(row, d.DupCount))
		}
		t.Render()
	}

	fmt.Fprintln(w, "\nData Type Validation")
	switch {
	case len(report.rules.Types) == 0:
		fmt.Fprintln(w, "No columns selected for type validation.")
	case len(report.TypeMismatches) == 0:
		fmt.Fprintln(w, "All types match expected values.")
	default:
		for _, m := range report.TypeMismatches {
			fmt.Fprintf(w, "  %s: %s\n", m.Column, m)
		}
	}

	fmt.Fprintln(w, "\nRange Validation")
	switch {
	case len(report.rules.Ranges) == 0:
		fmt.Fprintln(w, "No columns selected for range validation.")
	case len(report.RangeViolations) == 0:
		fmt.Fprintln(w, "All values within specified ranges.")
	default:
		t := utils.NewTable(w)
		t.AppendHeader(table.Row{"Column", "Row", "Value"})
		for _, v := range report.RangeViolations {
			t.AppendRow(table.Row{v.Column, v.Row, v.Value})
		}
		t.Render()
	}
	return w.Err
}

