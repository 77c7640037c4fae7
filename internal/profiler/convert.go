package profiler

import (
	"database/sql"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Conversion actions recorded in the summary
const (
	ConvertedDate     = "Converted to datetime"
	ConvertedBoolean  = "Converted to boolean"
	ConvertedCategory = "Converted to category"
	ParsedSymbolic    = "Parsed numeric values with symbols"
)

// Conversion is one column type change
type Conversion struct {
	Column string `json:"column"`
	Action string `json:"action"`
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2 January 2006",
}

var (
	booleanTokens = map[string]bool{"yes": true, "no": true, "true": true, "false": true, "0": true, "1": true}
	truthyTokens  = map[string]bool{"yes": true, "true": true, "1": true}
	symbolPattern = regexp.MustCompile(`[$%,]`)
)

// ParseDate tries the supported layouts in order
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// convertDates turns text columns named like *date* into dates; unparseable
// values become missing
func convertDates(ds *Dataset) []Conversion {
	var out []Conversion
	for _, c := range ds.Columns {
		if !strings.Contains(strings.ToLower(c.Name), "date") {
			continue
		}
		if c.Kind != KindText && c.Kind != KindCategory {
			continue
		}
		for i, v := range c.Values {
			if !v.Valid {
				continue
			}
			if t, ok := ParseDate(v.String); ok {
				c.Values[i] = sql.NullString{String: formatDate(t), Valid: true}
			} else {
				c.Values[i] = sql.NullString{}
			}
		}
		c.Kind = KindDate
		out = append(out, Conversion{Column: c.Name, Action: ConvertedDate})
	}
	return out
}

// convertBooleans maps yes/no, true/false and 0/1 text columns to booleans
func convertBooleans(ds *Dataset) []Conversion {
	var out []Conversion
	for _, c := range ds.Columns {
		if c.Kind != KindText {
			continue
		}
		distinct := c.distinct()
		if len(distinct) == 0 {
			continue
		}
		ok := true
		for _, v := range distinct {
			if !booleanTokens[strings.ToLower(v)] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i, v := range c.Values {
			if v.Valid {
				b := truthyTokens[strings.ToLower(strings.TrimSpace(v.String))]
				c.Values[i] = sql.NullString{String: strconv.FormatBool(b), Valid: true}
			}
		}
		c.Kind = KindBoolean
		out = append(out, Conversion{Column: c.Name, Action: ConvertedBoolean})
	}
	return out
}

// convertCategories marks low-cardinality text columns as categories
func convertCategories(ds *Dataset, limit int, done map[string]bool) []Conversion {
	var out []Conversion
	for _, c := range ds.Columns {
		if c.Kind != KindText || done[c.Name] {
			continue
		}
		if len(c.distinct()) <= limit {
			c.Kind = KindCategory
			out = append(out, Conversion{Column: c.Name, Action: ConvertedCategory})
		}
	}
	return out
}

// parseSymbolicNumbers strips $, % and , from text columns whose first ten
// values carry them, then reads them as numbers
func parseSymbolicNumbers(ds *Dataset) []Conversion {
	var out []Conversion
	for _, c := range ds.Columns {
		if c.Kind != KindText {
			continue
		}
		sampled, found := 0, false
		for _, v := range c.Values {
			if !v.Valid {
				continue
			}
			if symbolPattern.MatchString(v.String) {
				found = true
				break
			}
			sampled++
			if sampled == 10 {
				break
			}
		}
		if !found {
			continue
		}

		c.Numbers = make([]float64, len(c.Values))
		for i, v := range c.Values {
			c.Numbers[i] = math.NaN()
			if !v.Valid {
				continue
			}
			cleaned := strings.TrimSpace(symbolPattern.ReplaceAllString(v.String, ""))
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				c.Numbers[i] = f
			}
		}
		c.Kind = KindFloat
		out = append(out, Conversion{Column: c.Name, Action: ParsedSymbolic})
	}
	return out
}

// Imputation records the missing values replaced in one column
type Imputation struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
}

// imputeMeans fills missing numeric values with the column mean. Columns
// without any value are left alone.
func imputeMeans(ds *Dataset) []Imputation {
	var out []Imputation
	for _, c := range ds.Columns {
		if !c.Kind.IsNumeric() {
			continue
		}
		m := Mean(c.Numbers)
		if math.IsNaN(m) {
			continue
		}
		filled := 0
		for i, v := range c.Numbers {
			if math.IsNaN(v) {
				c.Numbers[i] = m
				filled++
			}
		}
		c.Kind = KindFloat
		if filled > 0 {
			out = append(out, Imputation{Column: c.Name, Count: filled, Mean: m})
		}
	}
	return out
}

// dropDuplicates keeps the first of every set of identical rows. Missing
// values compare equal to each other.
func dropDuplicates(ds *Dataset) int {
	seen := make(map[string]bool)
	marks := make([]bool, ds.Rows)
	removed := 0
	for i := 0; i < ds.Rows; i++ {
		var b strings.Builder
		for _, c := range ds.Columns {
			if c.valid(i) {
				b.WriteString("v")
				b.WriteString(c.Cell(i))
			} else {
				b.WriteString("n")
			}
			b.WriteByte(0x1f)
		}
		key := b.String()
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		marks[i] = true
	}
	if removed > 0 {
		ds.keep(marks)
	}
	return removed
}
