// Package profiler infers column types of tabular data, cleans it the way an
// analyst would before looking at it, and computes descriptive statistics.
package profiler

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// ErrEmptyInput is returned for a CSV without a header row
var ErrEmptyInput = errors.New("input has no header row")

// nullTokens are read as missing values
var nullTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true,
	"NULL": true, "null": true, "None": true, "<NA>": true, "#N/A": true,
}

// ReadCSV reads a CSV with a header row into a frame. Short rows are padded
// with missing values.
func ReadCSV(r io.Reader) (*models.DataFrame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	df := &models.DataFrame{Columns: records[0]}
	for _, record := range records[1:] {
		row := make([]sql.NullString, len(df.Columns))
		for i := range row {
			if i < len(record) && !nullTokens[record[i]] {
				row[i] = sql.NullString{String: record[i], Valid: true}
			}
		}
		df.Rows = append(df.Rows, row)
	}
	return df, nil
}

// Kind is the inferred type of a column
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindBoolean  Kind = "boolean"
	KindDate     Kind = "date"
	KindCategory Kind = "category"
	KindText     Kind = "text"
)

// IsNumeric reports whether statistics apply to the kind
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// SQLType is the column type suggested for a target table
func (k Kind) SQLType() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "DECIMAL(18,4)"
	case KindDate:
		return "DATE"
	case KindBoolean:
		return "BOOLEAN"
	default:
		return "VARCHAR(100)"
	}
}

// Column is one typed column. Numbers is set for numeric kinds, NaN marking a
// missing value; Values holds the text of every other kind.
type Column struct {
	Name    string
	Kind    Kind
	Values  []sql.NullString
	Numbers []float64
}

// Missing counts missing cells
func (c *Column) Missing() int {
	n := 0
	if c.Kind.IsNumeric() {
		for _, v := range c.Numbers {
			if math.IsNaN(v) {
				n++
			}
		}
		return n
	}
	for _, v := range c.Values {
		if !v.Valid {
			n++
		}
	}
	return n
}

// Cell renders one cell; missing cells render as ""
func (c *Column) Cell(i int) string {
	if c.Kind.IsNumeric() {
		if math.IsNaN(c.Numbers[i]) {
			return ""
		}
		return strconv.FormatFloat(c.Numbers[i], 'f', -1, 64)
	}
	return c.Values[i].String
}

func (c *Column) valid(i int) bool {
	if c.Kind.IsNumeric() {
		return !math.IsNaN(c.Numbers[i])
	}
	return c.Values[i].Valid
}

// distinct returns the non-missing distinct values in first-seen order
func (c *Column) distinct() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range c.Values {
		if !c.valid(i) {
			continue
		}
		v := c.Cell(i)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Dataset is a frame with typed columns
type Dataset struct {
	Columns []*Column
	Rows    int
}

// NewDataset infers a kind for every column of the frame
func NewDataset(df *models.DataFrame) *Dataset {
	ds := &Dataset{Rows: len(df.Rows)}
	for _, name := range df.Columns {
		values, _ := df.Column(name)
		col := &Column{Name: name, Values: values, Kind: InferKind(values)}
		if col.Kind.IsNumeric() {
			col.Numbers = parseNumbers(values)
		}
		ds.Columns = append(ds.Columns, col)
	}
	return ds
}

// Column returns a column by name
func (ds *Dataset) Column(name string) (*Column, bool) {
	for _, c := range ds.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Frame renders the dataset back into text cells
func (ds *Dataset) Frame() *models.DataFrame {
	df := &models.DataFrame{}
	for _, c := range ds.Columns {
		df.Columns = append(df.Columns, c.Name)
	}
	for i := 0; i < ds.Rows; i++ {
		row := make([]sql.NullString, len(ds.Columns))
		for j, c := range ds.Columns {
			if c.valid(i) {
				row[j] = sql.NullString{String: c.Cell(i), Valid: true}
			}
		}
		df.Rows = append(df.Rows, row)
	}
	return df
}

// keep retains only the rows whose index is marked
func (ds *Dataset) keep(marks []bool) {
	for _, c := range ds.Columns {
		values := c.Values[:0:0]
		var numbers []float64
		for i, ok := range marks {
			if !ok {
				continue
			}
			values = append(values, c.Values[i])
			if c.Numbers != nil {
				numbers = append(numbers, c.Numbers[i])
			}
		}
		c.Values = values
		c.Numbers = numbers
	}
	n := 0
	for _, ok := range marks {
		if ok {
			n++
		}
	}
	ds.Rows = n
}

// InferKind returns integer when every present value is an integer, float
// when every present value is a number, boolean for true/false literals and
// text otherwise. A column with no values is float.
func InferKind(values []sql.NullString) Kind {
	isInt, isFloat, isBool := true, true, true
	present := 0
	for _, v := range values {
		if !v.Valid {
			continue
		}
		present++
		s := strings.TrimSpace(v.String)
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			isFloat = false
		}
		switch s {
		case "True", "TRUE", "true", "False", "FALSE", "false":
		default:
			isBool = false
		}
	}
	switch {
	case present == 0:
		return KindFloat
	case isInt:
		return KindInteger
	case isFloat:
		return KindFloat
	case isBool:
		return KindBoolean
	default:
		return KindText
	}
}

func parseNumbers(values []sql.NullString) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.NaN()
		if !v.Valid {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64); err == nil {
			out[i] = f
		}
	}
	return out
}
