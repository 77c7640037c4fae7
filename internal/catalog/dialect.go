package catalog

import (
	"fmt"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// Dialect produces the metadata queries for one backend.
// Column queries must select, in order: name, format, type, length, nullable, compress list.
type Dialect interface {
	Source() models.SourceType
	ViewDefinitionQuery(name models.ObjectName) (string, []interface{})
	TableColumnsQuery(schema, table string) (string, []interface{})
}

// DialectFor returns the dialect of a SQL source
func DialectFor(source models.SourceType) (Dialect, error) {
	switch source {
	case models.Teradata:
		return teradataDialect{}, nil
	case models.AzureSQL:
		return azureSQLDialect{}, nil
	case models.MySQL:
		return mysqlDialect{}, nil
	case models.Postgres:
		return postgresDialect{}, nil
	case models.SQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
}

type teradataDialect struct{}

func (teradataDialect) Source() models.SourceType { return models.Teradata }

func (teradataDialect) ViewDefinitionQuery(name models.ObjectName) (string, []interface{}) {
	if name.HasSchema() {
		return `SELECT RequestText FROM DBC.TablesV
			WHERE TableKind = 'V' AND DatabaseName = ? AND TableName = ?`,
			[]interface{}{name.Schema, name.Object}
	}
	return `SELECT RequestText FROM DBC.TablesV
		WHERE TableKind = 'V' AND TableName = ?`,
		[]interface{}{name.Object}
}

func (teradataDialect) TableColumnsQuery(schema, table string) (string, []interface{}) {
	return `SELECT ColumnName, ColumnFormat, ColumnType, ColumnLength, Nullable, CompressValueList
		FROM DBC.ColumnsV
		WHERE DatabaseName = ? AND TableName = ?
		ORDER BY ColumnId`,
		[]interface{}{schema, table}
}

type azureSQLDialect struct{}

func (azureSQLDialect) Source() models.SourceType { return models.AzureSQL }

func (azureSQLDialect) ViewDefinitionQuery(name models.ObjectName) (string, []interface{}) {
	q := `SELECT m.definition
		FROM sys.sql_modules m
		JOIN sys.views v ON v.object_id = m.object_id
		JOIN sys.schemas s ON s.schema_id = v.schema_id
		WHERE v.name = @p1`
	if name.HasSchema() {
		return q + ` AND s.name = @p2`, []interface{}{name.Object, name.Schema}
	}
	return q, []interface{}{name.Object}
}

func (azureSQLDialect) TableColumnsQuery(schema, table string) (string, []interface{}) {
	return `SELECT c.COLUMN_NAME, '' AS COLUMN_FORMAT, c.DATA_TYPE, c.CHARACTER_MAXIMUM_LENGTH, c.IS_NULLABLE, ''
		FROM INFORMATION_SCHEMA.COLUMNS c
		JOIN INFORMATION_SCHEMA.TABLES t
		  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2 AND t.TABLE_TYPE = 'BASE TABLE'
		ORDER BY c.ORDINAL_POSITION`,
		[]interface{}{schema, table}
}

type mysqlDialect struct{}

func (mysqlDialect) Source() models.SourceType { return models.MySQL }

func (mysqlDialect) ViewDefinitionQuery(name models.ObjectName) (string, []interface{}) {
	if name.HasSchema() {
		return `SELECT VIEW_DEFINITION FROM information_schema.VIEWS
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
			[]interface{}{name.Schema, name.Object}
	}
	return `SELECT VIEW_DEFINITION FROM information_schema.VIEWS
		WHERE TABLE_NAME = ?`,
		[]interface{}{name.Object}
}

func (mysqlDialect) TableColumnsQuery(schema, table string) (string, []interface{}) {
	return `SELECT c.COLUMN_NAME, c.COLUMN_TYPE, c.DATA_TYPE, c.CHARACTER_MAXIMUM_LENGTH, c.IS_NULLABLE, ''
		FROM information_schema.COLUMNS c
		JOIN information_schema.TABLES t
		  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
		WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ? AND t.TABLE_TYPE = 'BASE TABLE'
		ORDER BY c.ORDINAL_POSITION`,
		[]interface{}{schema, table}
}

type postgresDialect struct{}

func (postgresDialect) Source() models.SourceType { return models.Postgres }

func (postgresDialect) ViewDefinitionQuery(name models.ObjectName) (string, []interface{}) {
	if name.HasSchema() {
		return `SELECT definition FROM pg_catalog.pg_views
			WHERE schemaname = $1 AND viewname = $2`,
			[]interface{}{name.Schema, name.Object}
	}
	return `SELECT definition FROM pg_catalog.pg_views
		WHERE viewname = $1`,
		[]interface{}{name.Object}
}

func (postgresDialect) TableColumnsQuery(schema, table string) (string, []interface{}) {
	return `SELECT c.column_name, c.udt_name, c.data_type, c.character_maximum_length, c.is_nullable, ''
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND c.table_name = $2 AND t.table_type = 'BASE TABLE'
		ORDER BY c.ordinal_position`,
		[]interface{}{schema, table}
}

// sqliteDialect ignores schemas; a database file is a single namespace.
type sqliteDialect struct{}

func (sqliteDialect) Source() models.SourceType { return models.SQLite }

func (sqliteDialect) ViewDefinitionQuery(name models.ObjectName) (string, []interface{}) {
	return `SELECT sql FROM sqlite_master WHERE type = 'view' AND name = ?`,
		[]interface{}{name.Object}
}

func (sqliteDialect) TableColumnsQuery(_, table string) (string, []interface{}) {
	return `SELECT p.name, '', p.type, NULL, CASE WHEN p."notnull" = 1 THEN 'N' ELSE 'Y' END, ''
		FROM sqlite_master m, pragma_table_info(m.name) p
		WHERE m.type = 'table' AND m.name = ?
		ORDER BY p.cid`,
		[]interface{}{table}
}
