package catalog

import (
	"context"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// DatabricksCatalog resolves objects through Unity Catalog.
// Two-part names are prefixed with Catalog; bare names also get DefaultSchema.
type DatabricksCatalog struct {
	Client        *connector.DatabricksClient
	Catalog       string
	DefaultSchema string
}

// NewDatabricksCatalog creates a Unity Catalog backed catalog
func NewDatabricksCatalog(client *connector.DatabricksClient, catalog, defaultSchema string) *DatabricksCatalog {
	return &DatabricksCatalog{Client: client, Catalog: catalog, DefaultSchema: defaultSchema}
}

// FullName expands a one, two or three part name to catalog.schema.object.
// Parsed names split at the first dot, so a three-part name arrives as
// schema "catalog" and object "schema.object".
func (c *DatabricksCatalog) FullName(schema, object string) string {
	if schema == "" {
		schema = c.DefaultSchema
	}
	name := schema + "." + object
	if strings.Count(name, ".") >= 2 {
		return name
	}
	return c.Catalog + "." + name
}

// FetchViewDefinition returns the view text, or "" for tables and unknown names
func (c *DatabricksCatalog) FetchViewDefinition(ctx context.Context, name models.ObjectName) (string, error) {
	table, err := c.Client.GetTable(ctx, c.FullName(name.Schema, name.Object))
	if err != nil {
		return "", err
	}
	if table == nil || !table.IsView() {
		return "", nil
	}
	return strings.TrimSpace(table.ViewDefinition), nil
}

// FetchTableColumns returns the columns of a non-view table
func (c *DatabricksCatalog) FetchTableColumns(ctx context.Context, schema, table string) ([]models.ColumnMeta, error) {
	info, err := c.Client.GetTable(ctx, c.FullName(schema, table))
	if err != nil {
		return nil, err
	}
	if info == nil || info.IsView() {
		return nil, nil
	}

	columns := make([]models.ColumnMeta, 0, len(info.Columns))
	for _, col := range info.Columns {
		columns = append(columns, models.ColumnMeta{
			Name:     col.Name,
			Format:   col.TypeName,
			Type:     col.TypeText,
			Nullable: col.Nullable,
		})
	}
	return columns, nil
}
