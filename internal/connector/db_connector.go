package connector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotSQLSource is returned when a SQL connection is requested for a REST-only source
var ErrNotSQLSource = errors.New("source is not reachable through database/sql")

// TeradataDriverName is the database/sql driver name registered by the Teradata driver
const TeradataDriverName = "teradatasql"

// DatabaseConnector handles database connection and query execution
type DatabaseConnector struct {
	Source      models.SourceType
	Name        string
	Credentials map[string]string
	DB          *sql.DB
	Logger      *logrus.Logger
}

// NewDatabaseConnector creates a new database connector
func NewDatabaseConnector(source models.SourceType, name string, creds map[string]string, logger *logrus.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Source:      source,
		Name:        name,
		Credentials: creds,
		Logger:      logger,
	}
}

// DriverName returns the database/sql driver for the source
func (dc *DatabaseConnector) DriverName() (string, error) {
	switch dc.Source {
	case models.Teradata:
		return TeradataDriverName, nil
	case models.AzureSQL:
		return "sqlserver", nil
	case models.MySQL:
		return "mysql", nil
	case models.Postgres:
		return "pgx", nil
	case models.SQLite:
		return "sqlite", nil
	case models.Databricks:
		return "", fmt.Errorf("%w: %s", ErrNotSQLSource, dc.Source)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, dc.Source)
	}
}

// DSN builds the driver connection string from the stored credentials
func (dc *DatabaseConnector) DSN() (string, error) {
	c := dc.Credentials
	switch dc.Source {
	case models.Teradata:
		params := map[string]string{
			"host":     c["host"],
			"user":     c["user"],
			"password": c["password"],
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case models.AzureSQL:
		q := url.Values{}
		q.Set("database", c["database"])
		q.Set("encrypt", "true")
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c["user"], c["password"]),
			Host:     c["server"],
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case models.MySQL:
		cfg := mysql.NewConfig()
		cfg.User = c["user"]
		cfg.Passwd = c["password"]
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c["host"], defaultString(c["port"], "3306"))
		cfg.DBName = c["database"]
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case models.Postgres:
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c["user"], c["password"]),
			Host:   net.JoinHostPort(c["host"], defaultString(c["port"], "5432")),
			Path:   "/" + c["database"],
		}
		return u.String(), nil
	case models.SQLite:
		return c["file"], nil
	case models.Databricks:
		return "", fmt.Errorf("%w: %s", ErrNotSQLSource, dc.Source)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, dc.Source)
	}
}

// Connect establishes a connection to the database
func (dc *DatabaseConnector) Connect(ctx context.Context) error {
	driver, err := dc.DriverName()
	if err != nil {
		return err
	}
	dsn, err := dc.DSN()
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		dc.Logger.Errorf("Error connecting to %s: %v", dc.Source.DisplayName(), err)
		return fmt.Errorf("failed to connect to %s: %w", dc.Source.DisplayName(), err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		dc.Logger.Errorf("Error pinging %s: %v", dc.Source.DisplayName(), err)
		return fmt.Errorf("failed to connect to %s: %w", dc.Source.DisplayName(), err)
	}

	dc.DB = db
	dc.Logger.Infof("Connected to %s connection '%s'", dc.Source.DisplayName(), dc.Name)
	return nil
}

// Disconnect closes the database connection
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB != nil {
		if err := dc.DB.Close(); err != nil {
			dc.Logger.Errorf("Error closing database connection: %v", err)
		} else {
			dc.Logger.Debugf("%s connection '%s' closed", dc.Source.DisplayName(), dc.Name)
		}
		dc.DB = nil
	}
}

func (dc *DatabaseConnector) ensureConnected(ctx context.Context) error {
	if dc.DB == nil {
		return dc.Connect(ctx)
	}
	return nil
}

// QueryFrame executes a query and returns the rows as a DataFrame, keeping column order
func (dc *DatabaseConnector) QueryFrame(ctx context.Context, query string, params ...interface{}) (*models.DataFrame, error) {
	if err := dc.ensureConnected(ctx); err != nil {
		return nil, err
	}

	rows, err := dc.DB.QueryContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	df := &models.DataFrame{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make([]sql.NullString, len(columns))
		for i, val := range values {
			row[i] = toNullString(val)
		}
		df.Rows = append(df.Rows, row)
	}
	return df, rows.Err()
}

// versionQueries report the server version of each SQL source
var versionQueries = map[models.SourceType]string{
	models.Teradata: "SELECT InfoData FROM DBC.DBCInfoV WHERE InfoKey = 'VERSION'",
	models.AzureSQL: "SELECT @@VERSION",
	models.MySQL:    "SELECT VERSION()",
	models.Postgres: "SELECT version()",
	models.SQLite:   "SELECT sqlite_version()",
}

// ServerVersion asks the database for its version string
func (dc *DatabaseConnector) ServerVersion(ctx context.Context) (string, error) {
	query, ok := versionQueries[dc.Source]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotSQLSource, dc.Source)
	}
	df, err := dc.QueryFrame(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query %s version: %w", dc.Source.DisplayName(), err)
	}
	if len(df.Rows) == 0 || len(df.Rows[0]) == 0 {
		return "", fmt.Errorf("%s returned no version", dc.Source.DisplayName())
	}
	return df.Rows[0][0].String, nil
}

// Exec executes a statement that returns no rows
func (dc *DatabaseConnector) Exec(ctx context.Context, query string, params ...interface{}) (int64, error) {
	if err := dc.ensureConnected(ctx); err != nil {
		return 0, err
	}

	result, err := dc.DB.ExecContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}
	return result.RowsAffected()
}

// ExecuteMany executes a SQL statement with multiple parameter sets in one transaction
func (dc *DatabaseConnector) ExecuteMany(ctx context.Context, query string, paramsList [][]interface{}) (int64, error) {
	if err := dc.ensureConnected(ctx); err != nil {
		return 0, err
	}

	tx, err := dc.DB.BeginTx(ctx, nil)
	if err != nil {
		dc.Logger.Errorf("Error starting transaction: %v", err)
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		dc.Logger.Errorf("Error preparing statement: %v", err)
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var totalAffected int64

	for _, params := range paramsList {
		result, err := stmt.ExecContext(ctx, params...)
		if err != nil {
			dc.Logger.Errorf("Error executing batch statement: %v", err)
			tx.Rollback()
			return 0, err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			dc.Logger.Errorf("Error getting affected rows: %v", err)
			tx.Rollback()
			return 0, err
		}

		totalAffected += affected
	}

	if err := tx.Commit(); err != nil {
		dc.Logger.Errorf("Error committing transaction: %v", err)
		tx.Rollback()
		return 0, err
	}

	return totalAffected, nil
}

// Placeholder returns the bind parameter marker for the n-th (1-based) argument
func (dc *DatabaseConnector) Placeholder(n int) string {
	switch dc.Source {
	case models.Postgres:
		return fmt.Sprintf("$%d", n)
	case models.AzureSQL:
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

func toNullString(val interface{}) sql.NullString {
	switch v := val.(type) {
	case nil:
		return sql.NullString{}
	case []byte:
		return sql.NullString{String: string(v), Valid: true}
	case string:
		return sql.NullString{String: v, Valid: true}
	case time.Time:
		return sql.NullString{String: v.Format("2006-01-02 15:04:05"), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprintf("%v", v), Valid: true}
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
