package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/lineage"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/utils"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Section is one object in the lineage report
type Section struct {
	Title      string              `json:"title"`
	Kind       lineage.NodeKind    `json:"kind"`
	Key        string              `json:"key"`
	Definition string              `json:"definition,omitempty"`
	Columns    []models.ColumnMeta `json:"columns,omitempty"`
}

// Report is the ordered text view of a lineage result: views root first,
// then tables in discovery order
type Report struct {
	Root       string             `json:"root"`
	Message    string             `json:"message,omitempty"`
	Sections   []Section          `json:"sections"`
	Cycles     [][]string         `json:"cycles,omitempty"`
	Advisories []lineage.Advisory `json:"advisories,omitempty"`
	Truncated  bool               `json:"truncated,omitempty"`
}

// BuildReport orders the records of a lineage result into sections
func BuildReport(result *lineage.Result) *Report {
	report := &Report{
		Root:       result.Root.String(),
		Advisories: result.Advisories,
		Truncated:  result.Truncated,
		Sections:   []Section{},
	}
	if result.Empty() {
		report.Message = lineage.NoLineageMessage
		return report
	}

	for _, v := range result.Views {
		report.Sections = append(report.Sections, Section{
			Title:      "View: " + v.Key,
			Kind:       lineage.KindView,
			Key:        v.Key,
			Definition: v.Definition,
		})
	}
	for _, t := range result.Tables {
		report.Sections = append(report.Sections, Section{
			Title:   "Table: " + t.Key,
			Kind:    lineage.KindTable,
			Key:     t.Key,
			Columns: t.Columns,
		})
	}
	if result.Graph != nil && result.Graph.HasCycle() {
		report.Cycles = result.Graph.Cycles()
	}
	return report
}

// WriteReport renders the report as text
func WriteReport(out io.Writer, report *Report) error {
	w := utils.NewErrWriter(out)
	fmt.Fprintln(w, utils.Banner("LINEAGE FOR "+report.Root, 80))

	if report.Message != "" {
		fmt.Fprintln(w, report.Message)
	}

	for _, section := range report.Sections {
		fmt.Fprintf(w, "\n%s\n", section.Title)
		fmt.Fprintln(w, strings.Repeat("-", 60))

		if section.Kind == lineage.KindView {
			fmt.Fprintln(w, section.Definition)
			continue
		}

		t := utils.NewTable(w)
		t.AppendHeader(table.Row{"Column", "Type", "Format", "Length", "Nullable", "Compress"})
		for _, col := range section.Columns {
			length := ""
			if col.Length != nil {
				length = fmt.Sprintf("%d", *col.Length)
			}
			t.AppendRow(table.Row{col.Name, col.Type, col.Format, length, col.Nullable, col.CompressValueList})
		}
		t.Render()
	}

	if len(report.Cycles) > 0 {
		fmt.Fprintln(w, "\nCircular references:")
		for _, cycle := range report.Cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(cycle, " <-> "))
		}
	}

	if report.Truncated {
		fmt.Fprintln(w, "\nSome views were not expanded: maximum depth reached.")
	}

	if len(report.Advisories) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, a := range report.Advisories {
			fmt.Fprintf(w, "  - %s\n", a)
		}
	}

	return w.Err
}
