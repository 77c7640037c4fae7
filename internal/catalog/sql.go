package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

// SQLCatalog reads view definitions and table columns through database/sql
type SQLCatalog struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *logrus.Logger
}

// NewSQLCatalog creates a catalog over an open connection
func NewSQLCatalog(db *sql.DB, dialect Dialect, logger *logrus.Logger) *SQLCatalog {
	return &SQLCatalog{DB: db, Dialect: dialect, Logger: logger}
}

// FetchViewDefinition returns the first matching view's SQL text
func (c *SQLCatalog) FetchViewDefinition(ctx context.Context, name models.ObjectName) (string, error) {
	query, args := c.Dialect.ViewDefinitionQuery(name)
	c.Logger.Debugf("Fetching view definition for %s", name)

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("fetch view definition for %s: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	var text sql.NullString
	if err := rows.Scan(&text); err != nil {
		return "", fmt.Errorf("scan view definition for %s: %w", name, err)
	}
	return strings.TrimSpace(text.String), nil
}

// FetchTableColumns returns the columns of a base table in ordinal order
func (c *SQLCatalog) FetchTableColumns(ctx context.Context, schema, table string) ([]models.ColumnMeta, error) {
	query, args := c.Dialect.TableColumnsQuery(schema, table)
	c.Logger.Debugf("Fetching columns for %s.%s", schema, table)

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch columns for %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []models.ColumnMeta
	for rows.Next() {
		var (
			name, format, colType, nullable, compress sql.NullString
			length                                    sql.NullInt64
		)
		if err := rows.Scan(&name, &format, &colType, &length, &nullable, &compress); err != nil {
			return nil, fmt.Errorf("scan column of %s.%s: %w", schema, table, err)
		}

		col := models.ColumnMeta{
			Name:              strings.TrimSpace(name.String),
			Format:            strings.TrimSpace(format.String),
			Type:              strings.TrimSpace(colType.String),
			Nullable:          isNullableFlag(nullable.String),
			CompressValueList: compress.String,
		}
		if length.Valid {
			l := length.Int64
			col.Length = &l
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s.%s: %w", schema, table, err)
	}
	return columns, nil
}

// isNullableFlag understands both 'Y'/'N' and 'YES'/'NO'
func isNullableFlag(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "Y", "YES", "1", "TRUE":
		return true
	default:
		return false
	}
}
