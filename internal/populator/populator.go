package populator

import (
	"context"
	"fmt"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/generator"
	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of rows inserted per transaction
const DefaultBatchSize = 100

// DatabasePopulator loads generated sample rows into a target table
type DatabasePopulator struct {
	DB            *connector.DatabaseConnector
	DataGenerator *generator.DataGenerator
	NumRecords    int
	BatchSize     int
	InsertedRows  map[string]int64
	Logger        *logrus.Logger
}

// NewDatabasePopulator creates a new database populator
func NewDatabasePopulator(
	db *connector.DatabaseConnector,
	dataGenerator *generator.DataGenerator,
	numRecords int,
	logger *logrus.Logger,
) *DatabasePopulator {
	return &DatabasePopulator{
		DB:            db,
		DataGenerator: dataGenerator,
		NumRecords:    numRecords,
		BatchSize:     DefaultBatchSize,
		InsertedRows:  make(map[string]int64),
		Logger:        logger,
	}
}

// CreateTable runs the generated DDL on the target
func (dp *DatabasePopulator) CreateTable(ctx context.Context, ddl string) error {
	if _, err := dp.DB.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// InsertStatement builds the parameterised INSERT for the table
func (dp *DatabasePopulator) InsertStatement(table string, columns []generator.MappedColumn) string {
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
		placeholders[i] = dp.DB.Placeholder(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
}

// PopulateTable inserts NumRecords generated rows in batches. A failed batch
// is rolled back and stops the load; earlier batches stay committed.
func (dp *DatabasePopulator) PopulateTable(ctx context.Context, table string, columns []generator.MappedColumn) (int64, error) {
	dp.Logger.Infof("Populating table: %s", table)

	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns found for table: %s", table)
	}

	batchSize := dp.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	insertSQL := dp.InsertStatement(table, columns)

	var total int64
	for done := 0; done < dp.NumRecords; done += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n := batchSize
		if remaining := dp.NumRecords - done; remaining < n {
			n = remaining
		}

		paramsList := dp.DataGenerator.GenerateRows(columns, n)
		affected, err := dp.DB.ExecuteMany(ctx, insertSQL, paramsList)
		if err != nil {
			dp.Logger.Errorf("Error inserting data into table %s: %v", table, err)
			return total, fmt.Errorf("insert into %s: %w", table, err)
		}
		total += affected
		dp.InsertedRows[table] += affected
	}

	dp.Logger.Infof("Successfully populated table %s with %d records", table, total)
	return total, nil
}
