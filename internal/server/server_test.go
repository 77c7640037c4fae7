package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/catalog"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/config"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

// Helper function to create a test logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

// Helper function to create a server backed by a snapshot catalog
func newTestServer(t *testing.T, snap *catalog.Snapshot) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.StorePath = filepath.Join(dir, "connections.yaml")
	cfg.KeyPath = filepath.Join(dir, "secret.key")

	srv := NewServer(cfg, createTestLogger())
	srv.OpenCatalog = func(_ context.Context, _ *connector.Session, source models.SourceType, conn string) (catalog.Catalog, error) {
		if conn != "dev" {
			return nil, fmt.Errorf("%w: %s/%s", connector.ErrConnectionNotFound, source, conn)
		}
		return snap, nil
	}
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, catalog.NewSnapshot()), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestSources(t *testing.T) {
	rec := get(t, newTestServer(t, catalog.NewSnapshot()), "/api/sources")
	var sources []SourceInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &sources); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(sources) != len(models.SourceTypes) {
		t.Fatalf("Expected %d sources, got %d", len(models.SourceTypes), len(sources))
	}
	if sources[1].Name != "Azure SQL DB" {
		t.Errorf("Expected 'Azure SQL DB', got '%s'", sources[1].Name)
	}
}

func TestConnections(t *testing.T) {
	srv := newTestServer(t, catalog.NewSnapshot())

	session, err := connector.NewSession(srv.Config, srv.Logger)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := session.Store.Store(models.SQLite, "local", map[string]string{"file": "demo.db"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := session.Store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	session.Close()

	rec := get(t, srv, "/api/connections/sqlite")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Source      string   `json:"source"`
		Connections []string `json:"connections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body.Connections) != 1 || body.Connections[0] != "local" {
		t.Errorf("Expected [local], got %v", body.Connections)
	}

	rec = get(t, srv, "/api/connections/mysql")
	if !strings.Contains(rec.Body.String(), `"connections":[]`) {
		t.Errorf("Expected empty connection list, got %s", rec.Body.String())
	}

	rec = get(t, srv, "/api/connections/oracle")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown source, got %d", rec.Code)
	}
}

func TestLineage(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["sales.v_summary"] = "SELECT * FROM sales.v_orders o JOIN sales.customers c ON o.id = c.id"
	snap.Views["sales.v_orders"] = "SELECT * FROM sales.orders"
	snap.Tables["sales.orders"] = []models.ColumnMeta{{Name: "id", Type: "INTEGER"}}
	snap.Tables["sales.customers"] = []models.ColumnMeta{{Name: "id", Type: "INTEGER"}}

	rec := get(t, newTestServer(t, snap), "/api/lineage/teradata/dev?view=sales.v_summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LineageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Root != "sales.v_summary" {
		t.Errorf("Expected root 'sales.v_summary', got '%s'", resp.Root)
	}
	if len(resp.Layout.Positions) != 4 {
		t.Errorf("Expected 4 positioned nodes, got %d", len(resp.Layout.Positions))
	}
	if len(resp.Edges) != 3 {
		t.Errorf("Expected 3 edges, got %d", len(resp.Edges))
	}

	want := []string{"View: sales.v_summary", "View: sales.v_orders", "Table: sales.orders", "Table: sales.customers"}
	if len(resp.Report.Sections) != len(want) {
		t.Fatalf("Expected %d sections, got %d", len(want), len(resp.Report.Sections))
	}
	for i, title := range want {
		if resp.Report.Sections[i].Title != title {
			t.Errorf("Section %d: expected '%s', got '%s'", i, title, resp.Report.Sections[i].Title)
		}
	}
}

func TestLineageEmpty(t *testing.T) {
	rec := get(t, newTestServer(t, catalog.NewSnapshot()), "/api/lineage/teradata/dev?view=nothing")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No view or table definitions found.") {
		t.Errorf("Expected no-lineage message, got %s", rec.Body.String())
	}
}

func TestLineageDOT(t *testing.T) {
	snap := catalog.NewSnapshot()
	snap.Views["v"] = "SELECT 1 FROM t"
	snap.Tables["dbc.t"] = []models.ColumnMeta{{Name: "a"}}

	rec := get(t, newTestServer(t, snap), "/api/lineage/teradata/dev?view=v&format=dot")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "digraph lineage {") {
		t.Errorf("Expected DOT output, got %s", rec.Body.String())
	}
}

func TestLineageErrors(t *testing.T) {
	srv := newTestServer(t, catalog.NewSnapshot())

	tests := []struct {
		path string
		code int
	}{
		{"/api/lineage/teradata/dev", http.StatusBadRequest},
		{"/api/lineage/oracle/dev?view=v", http.StatusBadRequest},
		{"/api/lineage/teradata/prod?view=v", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := get(t, srv, tt.path)
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, rec.Code)
		}
	}

	srv.OpenCatalog = func(context.Context, *connector.Session, models.SourceType, string) (catalog.Catalog, error) {
		return nil, errors.New("connection refused")
	}
	if rec := get(t, srv, "/api/lineage/teradata/dev?view=v"); rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, catalog.NewSnapshot())
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected Access-Control-Allow-Origin header")
	}
}

func TestServeShutdown(t *testing.T) {
	srv := newTestServer(t, catalog.NewSnapshot())
	srv.Config.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	cancel()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}

func TestConcurrentFirstRequestsShareKey(t *testing.T) {
	srv := newTestServer(t, catalog.NewSnapshot())
	handler := srv.Handler()

	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/connections/sqlite", nil))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i, code)
		}
	}

	first, err := srv.Encryptor()
	if err != nil {
		t.Fatalf("Encryptor failed: %v", err)
	}
	second, _ := srv.Encryptor()
	if first != second {
		t.Error("Expected one encryptor shared by every request")
	}

	// A secret saved with the shared key must be readable by a fresh session
	session, err := connector.NewSessionWithEncryptor(srv.Config, first, srv.Logger)
	if err != nil {
		t.Fatalf("NewSessionWithEncryptor failed: %v", err)
	}
	if err := session.Store.Store(models.SQLite, "local", map[string]string{"file": "demo.db"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := session.Store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fresh, err := connector.NewSession(srv.Config, srv.Logger)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	creds, err := fresh.Store.Get(models.SQLite, "local", nil)
	if err != nil || creds["file"] != "demo.db" {
		t.Errorf("Expected the stored file to decrypt, got %v, %v", creds, err)
	}
}
