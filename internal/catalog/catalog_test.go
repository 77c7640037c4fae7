package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

// Helper function to create a test logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestDialectFor(t *testing.T) {
	for _, source := range []models.SourceType{models.Teradata, models.AzureSQL, models.MySQL, models.Postgres, models.SQLite} {
		d, err := DialectFor(source)
		if err != nil {
			t.Errorf("DialectFor(%s) failed: %v", source, err)
			continue
		}
		if d.Source() != source {
			t.Errorf("Expected dialect for %s, got %s", source, d.Source())
		}
	}

	if _, err := DialectFor(models.Databricks); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Expected ErrUnsupportedSource for databricks, got %v", err)
	}
}

func TestTeradataViewQueryUsesSchemaWhenPresent(t *testing.T) {
	d := teradataDialect{}

	q, args := d.ViewDefinitionQuery(models.ObjectName{Object: "v_sales"})
	if strings.Contains(q, "DatabaseName") || len(args) != 1 {
		t.Errorf("Bare name should filter on TableName only, got %q %v", q, args)
	}

	q, args = d.ViewDefinitionQuery(models.ObjectName{Schema: "sales", Object: "v_sales"})
	if !strings.Contains(q, "DatabaseName = ?") || len(args) != 2 || args[0] != "sales" {
		t.Errorf("Qualified name should filter on DatabaseName, got %q %v", q, args)
	}
}

func TestSQLCatalogFetchViewDefinition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	cat := NewSQLCatalog(db, teradataDialect{}, createTestLogger())

	mock.ExpectQuery("SELECT RequestText FROM DBC.TablesV").
		WithArgs("sales", "v_orders").
		WillReturnRows(sqlmock.NewRows([]string{"RequestText"}).
			AddRow("  REPLACE VIEW sales.v_orders AS SELECT * FROM sales.orders;  ").
			AddRow("ignored second match"))

	text, err := cat.FetchViewDefinition(context.Background(), models.ParseObjectName("sales.v_orders"))
	if err != nil {
		t.Fatalf("FetchViewDefinition failed: %v", err)
	}
	if text != "REPLACE VIEW sales.v_orders AS SELECT * FROM sales.orders;" {
		t.Errorf("Unexpected definition %q", text)
	}

	mock.ExpectQuery("SELECT RequestText FROM DBC.TablesV").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"RequestText"}))

	text, err = cat.FetchViewDefinition(context.Background(), models.ParseObjectName("orders"))
	if err != nil || text != "" {
		t.Errorf("Expected absent view, got %q, %v", text, err)
	}

	mock.ExpectQuery("SELECT RequestText").WillReturnError(errors.New("connection reset"))
	if _, err := cat.FetchViewDefinition(context.Background(), models.ParseObjectName("x")); err == nil {
		t.Error("Expected transport error to propagate")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestSQLCatalogFetchTableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	cat := NewSQLCatalog(db, teradataDialect{}, createTestLogger())

	cols := []string{"ColumnName", "ColumnFormat", "ColumnType", "ColumnLength", "Nullable", "CompressValueList"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM DBC.ColumnsV")).
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("order_id   ", "-(10)9", "I ", int64(4), "N", nil).
			AddRow("amount", "--------.99", "D ", int64(8), "Y", nil).
			AddRow("status", "X(10)", "CV", nil, "Y", "('NEW','DONE')"))

	columns, err := cat.FetchTableColumns(context.Background(), "sales", "orders")
	if err != nil {
		t.Fatalf("FetchTableColumns failed: %v", err)
	}
	if len(columns) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(columns))
	}
	if columns[0].Name != "order_id" || columns[0].Type != "I" || columns[0].Nullable {
		t.Errorf("Unexpected first column: %+v", columns[0])
	}
	if columns[0].Length == nil || *columns[0].Length != 4 {
		t.Errorf("Expected length 4 for order_id")
	}
	if !columns[1].Nullable {
		t.Error("Expected amount to be nullable")
	}
	if columns[2].Length != nil {
		t.Error("Expected nil length for status")
	}
	if columns[2].CompressValueList != "('NEW','DONE')" {
		t.Errorf("Unexpected compress list %q", columns[2].CompressValueList)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM DBC.ColumnsV")).
		WithArgs("dbc", "missing").
		WillReturnRows(sqlmock.NewRows(cols))
	columns, err = cat.FetchTableColumns(context.Background(), "dbc", "missing")
	if err != nil || len(columns) != 0 {
		t.Errorf("Expected no columns for missing table, got %v, %v", columns, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestPostgresNullableFlag(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	cat := NewSQLCatalog(db, postgresDialect{}, createTestLogger())
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("public", "customers").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "udt_name", "data_type", "len", "is_nullable", "c"}).
			AddRow("id", "int4", "integer", nil, "NO", "").
			AddRow("email", "varchar", "character varying", int64(255), "YES", ""))

	columns, err := cat.FetchTableColumns(context.Background(), "public", "customers")
	if err != nil {
		t.Fatalf("FetchTableColumns failed: %v", err)
	}
	if columns[0].Nullable || !columns[1].Nullable {
		t.Errorf("Unexpected nullability: %+v", columns)
	}
	if columns[1].Format != "varchar" || *columns[1].Length != 255 {
		t.Errorf("Unexpected email column: %+v", columns[1])
	}
}

func TestDatabricksCatalog(t *testing.T) {
	tables := map[string]connector.DatabricksTable{
		"main.sales.v_orders": {
			Name: "v_orders", TableType: "VIEW",
			ViewDefinition: "SELECT * FROM sales.orders",
		},
		"main.sales.orders": {
			Name: "orders", TableType: "MANAGED",
			Columns: []connector.DatabricksColumn{
				{Name: "id", TypeText: "bigint", TypeName: "LONG"},
				{Name: "note", TypeText: "string", TypeName: "STRING", Nullable: true},
			},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/2.1/unity-catalog/tables/")
		table, ok := tables[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error_code":"TABLE_DOES_NOT_EXIST"}`))
			return
		}
		json.NewEncoder(w).Encode(table)
	}))
	defer srv.Close()

	client := connector.NewDatabricksClient(srv.URL, "tok", createTestLogger())
	cat := NewDatabricksCatalog(client, "main", "default")

	if got := cat.FullName("", "x"); got != "main.default.x" {
		t.Errorf("Expected main.default.x, got %s", got)
	}
	if got := cat.FullName("other.sales", "x"); got != "other.sales.x" {
		t.Errorf("Expected three-part name untouched, got %s", got)
	}

	ctx := context.Background()
	text, err := cat.FetchViewDefinition(ctx, models.ParseObjectName("sales.v_orders"))
	if err != nil || text != "SELECT * FROM sales.orders" {
		t.Errorf("Unexpected view definition %q, %v", text, err)
	}

	text, err = cat.FetchViewDefinition(ctx, models.ParseObjectName("sales.orders"))
	if err != nil || text != "" {
		t.Errorf("A table is not a view, got %q, %v", text, err)
	}

	columns, err := cat.FetchTableColumns(ctx, "sales", "orders")
	if err != nil || len(columns) != 2 {
		t.Fatalf("Expected 2 columns, got %v, %v", columns, err)
	}
	if columns[0].Type != "bigint" || columns[0].Nullable || !columns[1].Nullable {
		t.Errorf("Unexpected columns: %+v", columns)
	}

	columns, err = cat.FetchTableColumns(ctx, "sales", "v_orders")
	if err != nil || columns != nil {
		t.Errorf("A view has no table columns, got %v, %v", columns, err)
	}

	columns, err = cat.FetchTableColumns(ctx, "sales", "nope")
	if err != nil || columns != nil {
		t.Errorf("Expected absent table, got %v, %v", columns, err)
	}
}

func TestDatabricksCatalogThreePartNames(t *testing.T) {
	var requested []string
	tables := map[string]connector.DatabricksTable{
		"other.sales.v": {Name: "v", TableType: "VIEW", ViewDefinition: "SELECT * FROM other.sales.t"},
		"other.sales.t": {Name: "t", TableType: "MANAGED", Columns: []connector.DatabricksColumn{{Name: "id", TypeText: "int"}}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/2.1/unity-catalog/tables/")
		requested = append(requested, name)
		table, ok := tables[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error_code":"TABLE_DOES_NOT_EXIST"}`))
			return
		}
		json.NewEncoder(w).Encode(table)
	}))
	defer srv.Close()

	cat := NewDatabricksCatalog(connector.NewDatabricksClient(srv.URL, "tok", createTestLogger()), "main", "default")
	ctx := context.Background()

	text, err := cat.FetchViewDefinition(ctx, models.ParseObjectName("other.sales.v"))
	if err != nil || text != "SELECT * FROM other.sales.t" {
		t.Errorf("Unexpected view definition %q, %v", text, err)
	}

	name := models.ParseObjectName("other.sales.t")
	columns, err := cat.FetchTableColumns(ctx, name.Schema, name.Object)
	if err != nil || len(columns) != 1 {
		t.Errorf("Expected 1 column, got %v, %v", columns, err)
	}

	for _, got := range requested {
		if strings.HasPrefix(got, "main.") {
			t.Errorf("Three-part name was prefixed with the default catalog: %s", got)
		}
	}
	if got := cat.FullName("sales", "orders"); got != "main.sales.orders" {
		t.Errorf("Expected main.sales.orders, got %s", got)
	}
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `views:
  sales.v_orders: SELECT * FROM sales.orders
tables:
  sales.orders:
    - name: id
      type: INTEGER
    - name: total
      type: DECIMAL
      nullable: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	ctx := context.Background()
	text, _ := snap.FetchViewDefinition(ctx, models.ParseObjectName("sales.v_orders"))
	if text != "SELECT * FROM sales.orders" {
		t.Errorf("Unexpected view text %q", text)
	}
	columns, _ := snap.FetchTableColumns(ctx, "sales", "orders")
	if len(columns) != 2 || !columns[1].Nullable {
		t.Errorf("Unexpected columns %+v", columns)
	}
	if snap.ViewCalls("sales.v_orders") != 1 || snap.TableCalls("sales.orders") != 1 {
		t.Error("Expected call counters to record one lookup each")
	}

	snap.Failures = map[string]error{"sales.orders": errors.New("boom")}
	if _, err := snap.FetchTableColumns(ctx, "sales", "orders"); err == nil {
		t.Error("Expected configured failure")
	}

	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing snapshot")
	}
}
