package profiler

import (
	"fmt"
	"io"
	"math"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/utils"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
)

// DefaultCategoryLimit is the highest distinct count of a category column
const DefaultCategoryLimit = 20

// Options tune a profiling run
type Options struct {
	CategoryLimit int
	// KeyColumn is checked for duplicate values
	KeyColumn string
	// GroupColumn is checked for values shared by several rows
	GroupColumn string
	PreviewRows int
}

// DefaultOptions returns the options used by the CLI and the API
func DefaultOptions() Options {
	return Options{CategoryLimit: DefaultCategoryLimit, PreviewRows: 5}
}

// ColumnMetadata is the inferred target-table shape of one column
type ColumnMetadata struct {
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
	Nullable   string `json:"nullable"`
}

// ColumnStats are the descriptive statistics of a numeric column
type ColumnStats struct {
	Column      string  `json:"column"`
	Count       int     `json:"count"`
	Mean        float64 `json:"mean"`
	Std         float64 `json:"std"`
	Min         float64 `json:"min"`
	Q1          float64 `json:"q1"`
	Median      float64 `json:"median"`
	Q3          float64 `json:"q3"`
	Max         float64 `json:"max"`
	Skewness    float64 `json:"skewness"`
	Kurtosis    float64 `json:"kurtosis"`
	ZOutliers   int     `json:"z_outliers"`
	IQROutliers int     `json:"iqr_outliers"`
}

// KeyReport summarises the key and group column checks
type KeyReport struct {
	KeyColumn          string `json:"key_column,omitempty"`
	DuplicateKeys      int    `json:"duplicate_keys"`
	GroupColumn        string `json:"group_column,omitempty"`
	UniqueGroups       int    `json:"unique_groups"`
	GroupsWithMultiple int    `json:"groups_with_multiple"`
}

// Profile is the result of one profiling run
type Profile struct {
	Rows              int               `json:"rows"`
	Preview           *models.DataFrame `json:"-"`
	Metadata          []ColumnMetadata  `json:"metadata"`
	Conversions       []Conversion      `json:"conversions"`
	Imputations       []Imputation      `json:"imputations"`
	DuplicatesRemoved int               `json:"duplicates_removed"`
	Stats             []ColumnStats     `json:"stats"`
	Keys              *KeyReport        `json:"keys,omitempty"`
	Cleaned           *models.DataFrame `json:"-"`
}

// Profiler runs the cleaning and statistics steps
type Profiler struct {
	Options Options
	Logger  *logrus.Logger
}

// NewProfiler creates a new profiler
func NewProfiler(opts Options, logger *logrus.Logger) *Profiler {
	if opts.CategoryLimit <= 0 {
		opts.CategoryLimit = DefaultCategoryLimit
	}
	return &Profiler{Options: opts, Logger: logger}
}

// InferMetadata suggests a SQL type and nullability for each column
func InferMetadata(ds *Dataset) []ColumnMetadata {
	out := make([]ColumnMetadata, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		nullable := "NOT NULL"
		if c.Missing() > 0 {
			nullable = "NULL"
		}
		out = append(out, ColumnMetadata{ColumnName: c.Name, DataType: c.Kind.SQLType(), Nullable: nullable})
	}
	return out
}

// Run profiles a frame. The frame itself is not modified.
func (p *Profiler) Run(df *models.DataFrame) *Profile {
	ds := NewDataset(df)
	profile := &Profile{Preview: df.Head(p.Options.PreviewRows)}
	profile.Metadata = InferMetadata(ds)

	profile.Conversions = append(profile.Conversions, convertDates(ds)...)
	profile.Conversions = append(profile.Conversions, convertBooleans(ds)...)

	done := make(map[string]bool)
	for _, c := range profile.Conversions {
		done[c.Column] = true
	}
	profile.Conversions = append(profile.Conversions, convertCategories(ds, p.Options.CategoryLimit, done)...)
	profile.Conversions = append(profile.Conversions, parseSymbolicNumbers(ds)...)
	for _, c := range profile.Conversions {
		p.Logger.Debugf("%s: %s", c.Column, c.Action)
	}

	profile.Imputations = imputeMeans(ds)
	profile.DuplicatesRemoved = dropDuplicates(ds)
	profile.Rows = ds.Rows
	p.Logger.Infof("Profiled %d columns; removed %d duplicate rows", len(ds.Columns), profile.DuplicatesRemoved)

	for _, c := range ds.Columns {
		if c.Kind.IsNumeric() {
			profile.Stats = append(profile.Stats, describe(c))
		}
	}

	if p.Options.KeyColumn != "" || p.Options.GroupColumn != "" {
		profile.Keys = checkKeys(ds, p.Options.KeyColumn, p.Options.GroupColumn)
	}

	profile.Cleaned = ds.Frame()
	return profile
}

func describe(c *Column) ColumnStats {
	vals := present(c.Numbers)
	stats := ColumnStats{
		Column:      c.Name,
		Count:       len(vals),
		Mean:        Mean(vals),
		Std:         StdDev(vals, 1),
		Min:         math.NaN(),
		Max:         math.NaN(),
		Q1:          Quantile(vals, 0.25),
		Median:      Quantile(vals, 0.5),
		Q3:          Quantile(vals, 0.75),
		Skewness:    Skewness(c.Numbers),
		Kurtosis:    Kurtosis(c.Numbers),
		ZOutliers:   ZScoreOutliers(c.Numbers),
		IQROutliers: IQROutliers(c.Numbers),
	}
	for i, v := range vals {
		if i == 0 || v < stats.Min {
			stats.Min = v
		}
		if i == 0 || v > stats.Max {
			stats.Max = v
		}
	}
	return stats
}

func checkKeys(ds *Dataset, keyColumn, groupColumn string) *KeyReport {
	report := &KeyReport{}
	if c, ok := ds.Column(keyColumn); ok {
		report.KeyColumn = keyColumn
		seen := make(map[string]bool)
		for i := 0; i < ds.Rows; i++ {
			key := "n"
			if c.valid(i) {
				key = "v" + c.Cell(i)
			}
			if seen[key] {
				report.DuplicateKeys++
			}
			seen[key] = true
		}
	}
	if c, ok := ds.Column(groupColumn); ok {
		report.GroupColumn = groupColumn
		counts := make(map[string]int)
		for i := 0; i < ds.Rows; i++ {
			if c.valid(i) {
				counts[c.Cell(i)]++
			}
		}
		report.UniqueGroups = len(counts)
		for _, n := range counts {
			if n > 1 {
				report.GroupsWithMultiple++
			}
		}
	}
	return report
}

// WriteProfile renders a profile as text
func WriteProfile(out io.Writer, profile *Profile) error {
	w := utils.NewErrWriter(out)
	fmt.Fprintln(w, utils.Banner("DATA PROFILE", 80))

	if profile.Preview != nil {
		fmt.Fprintln(w, "\nPreview:")
		WriteFrame(w, profile.Preview)
	}

	fmt.Fprintln(w, "\nInferred Metadata:")
	t := utils.NewTable(w)
	t.AppendHeader(table.Row{"ColumnName", "DataType", "Nullable"})
	for _, m := range profile.Metadata {
		t.AppendRow(table.Row{m.ColumnName, m.DataType, m.Nullable})
	}
	t.Render()

	if len(profile.Conversions) > 0 {
		fmt.Fprintln(w, "\nConversions:")
		for _, c := range profile.Conversions {
			fmt.Fprintf(w, "  - %s: %s\n", c.Column, c.Action)
		}
	}

	for _, im := range profile.Imputations {
		fmt.Fprintf(w, "Imputed %d missing values in %s with mean %.4f\n", im.Count, im.Column, im.Mean)
	}
	fmt.Fprintf(w, "Removed %d duplicate rows.\n", profile.DuplicatesRemoved)

	if len(profile.Stats) > 0 {
		fmt.Fprintln(w, "\nDescriptive Statistics:")
		t = utils.NewTable(w)
		t.AppendHeader(table.Row{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Skew", "Kurtosis", "Z Outliers", "IQR Outliers"})
		for _, s := range profile.Stats {
			t.AppendRow(table.Row{
				s.Column, s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Q1), num(s.Median),
				num(s.Q3), num(s.Max), num(s.Skewness), num(s.Kurtosis), s.ZOutliers, s.IQROutliers,
			})
		}
		t.Render()
	}

	if k := profile.Keys; k != nil {
		if k.KeyColumn != "" {
			fmt.Fprintf(w, "Duplicate %s values: %d\n", k.KeyColumn, k.DuplicateKeys)
		}
		if k.GroupColumn != "" {
			fmt.Fprintf(w, "Unique %s values: %d\n", k.GroupColumn, k.UniqueGroups)
			fmt.Fprintf(w, "%s values on multiple rows: %d\n", k.GroupColumn, k.GroupsWithMultiple)
		}
	}
	return w.Err
}

// WriteFrame renders a frame as a table; missing cells are blank
func WriteFrame(w io.Writer, df *models.DataFrame) {
	t := utils.NewTable(w)
	header := make(table.Row, len(df.Columns))
	for i, c := range df.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, row := range df.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell.String
		}
		t.AppendRow(r)
	}
	t.Render()
}


func num(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", f)
}
