package generator

import (
	"math"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
)

// Type families shared by the Teradata codes and the Azure SQL and Databricks names
const (
	familyString    = "string"
	familyInteger   = "integer"
	familyDecimal   = "decimal"
	familyDate      = "date"
	familyTimestamp = "timestamp"
	familyBoolean   = "boolean"
)

var typeParams = regexp.MustCompile(`\s*\(.*\)\s*$`)

// TypeFamily classifies a column type so one generator serves every platform
func TypeFamily(columnType string) string {
	base := strings.ToUpper(typeParams.ReplaceAllString(strings.TrimSpace(columnType), ""))
	switch base {
	case "CV", "CF", "VARCHAR", "NVARCHAR", "CHAR", "NCHAR", "STRING", "TEXT", "CLOB", "CO":
		return familyString
	case "I", "I1", "I2", "I8", "INT", "INTEGER", "TINYINT", "SMALLINT", "BIGINT", "BYTE", "SHORT", "LONG":
		return familyInteger
	case "D", "N", "F", "DECIMAL", "NUMERIC", "NUMBER", "FLOAT", "DOUBLE", "REAL", "MONEY":
		return familyDecimal
	case "DA", "DATE":
		return familyDate
	case "TS", "SZ", "DATETIME", "DATETIME2", "TIMESTAMP", "TIMESTAMP_NTZ":
		return familyTimestamp
	case "BOOLEAN", "BOOL", "BIT":
		return familyBoolean
	default:
		return familyString
	}
}

// DataGenerator generates sample values for target columns
type DataGenerator struct {
	Faker  faker.Faker
	Rand   *rand.Rand
	Logger *logrus.Logger
	// NullRate is the share of NULLs produced for nullable columns
	NullRate float64
}

// NewDataGenerator creates a new data generator
func NewDataGenerator(logger *logrus.Logger) *DataGenerator {
	return NewDataGeneratorWithSeed(time.Now().UnixNano(), logger)
}

// NewDataGeneratorWithSeed creates a generator whose output is reproducible
func NewDataGeneratorWithSeed(seed int64, logger *logrus.Logger) *DataGenerator {
	return &DataGenerator{
		Faker:    faker.NewWithSeed(rand.NewSource(seed)),
		Rand:     rand.New(rand.NewSource(seed)),
		Logger:   logger,
		NullRate: 0.1,
	}
}

// GenerateRows returns n rows of values in column order
func (dg *DataGenerator) GenerateRows(columns []MappedColumn, n int) [][]interface{} {
	rows := make([][]interface{}, 0, n)
	for i := 0; i < n; i++ {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			row[j] = dg.GenerateData(c)
		}
		rows = append(rows, row)
	}
	dg.Logger.Debugf("Generated %d sample rows for %d columns", n, len(columns))
	return rows
}

// GenerateData generates a value for a column based on its name and mapped type
func (dg *DataGenerator) GenerateData(column MappedColumn) interface{} {
	if column.Nullable && dg.Rand.Float64() < dg.NullRate {
		return nil
	}

	family := TypeFamily(column.MappedType)
	if family == familyString {
		if v, ok := dg.generateByName(strings.ToLower(column.Name)); ok {
			return truncate(v, column.Length)
		}
		return truncate(dg.generateString(column), column.Length)
	}

	switch family {
	case familyInteger:
		return dg.generateInteger(column.MappedType)
	case familyDecimal:
		return dg.generateFloat()
	case familyDate:
		return dg.generateDate()
	case familyTimestamp:
		return dg.generateDateTime()
	case familyBoolean:
		return dg.Rand.Intn(2) == 1
	default:
		dg.Logger.Warningf("No specific generator for type %s, using default string", column.MappedType)
		return dg.Faker.Lorem().Word()
	}
}

// generateByName recognises common column names
func (dg *DataGenerator) generateByName(columnName string) (string, bool) {
	switch {
	case strings.Contains(columnName, "email"):
		return dg.Faker.Internet().Email(), true
	case strings.Contains(columnName, "name") && !strings.Contains(columnName, "file"):
		switch {
		case strings.Contains(columnName, "first"):
			return dg.Faker.Person().FirstName(), true
		case strings.Contains(columnName, "last"):
			return dg.Faker.Person().LastName(), true
		case strings.Contains(columnName, "user"):
			return dg.Faker.Internet().User(), true
		case strings.Contains(columnName, "company") || strings.Contains(columnName, "business"):
			return dg.Faker.Company().Name(), true
		default:
			return dg.Faker.Person().Name(), true
		}
	case strings.Contains(columnName, "phone"):
		return dg.Faker.Phone().Number(), true
	case strings.Contains(columnName, "address"):
		return dg.Faker.Address().Address(), true
	case strings.Contains(columnName, "city"):
		return dg.Faker.Address().City(), true
	case strings.Contains(columnName, "state"):
		return dg.Faker.Address().State(), true
	case strings.Contains(columnName, "country"):
		return dg.Faker.Address().Country(), true
	case strings.Contains(columnName, "zip") || strings.Contains(columnName, "postal"):
		return dg.Faker.Address().PostCode(), true
	case strings.Contains(columnName, "description") || strings.Contains(columnName, "comment"):
		return dg.Faker.Lorem().Sentence(8), true
	case strings.Contains(columnName, "url") || strings.Contains(columnName, "website"):
		return dg.Faker.Internet().URL(), true
	case strings.Contains(columnName, "uuid") || strings.Contains(columnName, "guid"):
		return dg.Faker.UUID().V4(), true
	case strings.Contains(columnName, "status"):
		return dg.Faker.RandomStringElement([]string{"NEW", "ACTIVE", "CLOSED"}), true
	}
	return "", false
}

// generateString generates a string that fits the column length
func (dg *DataGenerator) generateString(column MappedColumn) string {
	var maxLength int64 = 50
	if column.Length != nil && *column.Length > 0 && *column.Length < maxLength {
		maxLength = *column.Length
	}

	switch {
	case maxLength <= 5:
		return dg.Faker.RandomStringWithLength(int(maxLength))
	case maxLength <= 10:
		return dg.Faker.Lorem().Word()
	default:
		return dg.Faker.Lorem().Sentence(int(maxLength / 10))
	}
}

// generateInteger keeps values inside the range of the integer width
func (dg *DataGenerator) generateInteger(columnType string) int64 {
	switch strings.ToUpper(strings.TrimSpace(columnType)) {
	case "I1", "TINYINT", "BYTE":
		return int64(dg.Rand.Intn(128))
	case "I2", "SMALLINT", "SHORT":
		return int64(dg.Rand.Intn(32768))
	case "I8", "BIGINT", "LONG":
		return dg.Rand.Int63n(1 << 40)
	default:
		return int64(dg.Rand.Int31())
	}
}

// generateFloat generates a value with four decimal places
func (dg *DataGenerator) generateFloat() float64 {
	value := dg.Rand.Float64() * 1000
	return math.Round(value*10000) / 10000
}

// generateDate generates a date within the last 5 years
func (dg *DataGenerator) generateDate() time.Time {
	days := dg.Rand.Intn(365 * 5)
	y, m, d := time.Now().UTC().AddDate(0, 0, -days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// generateDateTime generates a datetime within the last 5 years
func (dg *DataGenerator) generateDateTime() time.Time {
	days := dg.Rand.Intn(365 * 5)
	seconds := dg.Rand.Intn(24 * 60 * 60)

	return time.Now().UTC().
		AddDate(0, 0, -days).
		Add(-time.Duration(seconds) * time.Second).
		Truncate(time.Second)
}

func truncate(s string, length *int64) string {
	if length == nil || *length <= 0 || int64(len(s)) <= *length {
		return s
	}
	return s[:*length]
}
