package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIError is a non-2xx response from the Databricks REST API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Databricks API error: %d - %s", e.StatusCode, e.Body)
}

// DatabricksCatalogInfo is one Unity Catalog catalog
type DatabricksCatalogInfo struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// DatabricksColumn is a column of a Unity Catalog table
type DatabricksColumn struct {
	Name     string `json:"name"`
	TypeText string `json:"type_text"`
	TypeName string `json:"type_name"`
	Position int    `json:"position"`
	Nullable bool   `json:"nullable"`
	Comment  string `json:"comment,omitempty"`
}

// DatabricksTable is a Unity Catalog table or view
type DatabricksTable struct {
	Name           string             `json:"name"`
	CatalogName    string             `json:"catalog_name"`
	SchemaName     string             `json:"schema_name"`
	TableType      string             `json:"table_type"`
	ViewDefinition string             `json:"view_definition,omitempty"`
	Columns        []DatabricksColumn `json:"columns"`
}

// IsView reports whether the table is a view
func (t *DatabricksTable) IsView() bool {
	return strings.Contains(strings.ToUpper(t.TableType), "VIEW")
}

// DatabricksClient talks to the Unity Catalog REST API with a bearer token
type DatabricksClient struct {
	WorkspaceURL string
	Token        string
	HTTPClient   *http.Client
	Logger       *logrus.Logger
}

// NewDatabricksClient creates a client for the workspace
func NewDatabricksClient(workspaceURL, token string, logger *logrus.Logger) *DatabricksClient {
	return &DatabricksClient{
		WorkspaceURL: strings.TrimRight(workspaceURL, "/"),
		Token:        token,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		Logger:       logger,
	}
}

// ListCatalogs returns the catalogs visible to the token
func (c *DatabricksClient) ListCatalogs(ctx context.Context) ([]DatabricksCatalogInfo, error) {
	var out struct {
		Catalogs []DatabricksCatalogInfo `json:"catalogs"`
	}
	if err := c.get(ctx, "/api/2.1/unity-catalog/catalogs", &out); err != nil {
		return nil, err
	}
	return out.Catalogs, nil
}

// GetTable fetches a table by its three-part name. A missing table returns nil, nil.
func (c *DatabricksClient) GetTable(ctx context.Context, fullName string) (*DatabricksTable, error) {
	var table DatabricksTable
	err := c.get(ctx, "/api/2.1/unity-catalog/tables/"+url.PathEscape(fullName), &table)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &table, nil
}

func (c *DatabricksClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.WorkspaceURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Errorf("Failed to access Databricks catalog: %v", err)
		return fmt.Errorf("databricks request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read databricks response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode databricks response: %w", err)
	}
	return nil
}
