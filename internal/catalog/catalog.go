// Package catalog answers the two questions lineage resolution asks a
// database: "what SQL defines this view?" and "what columns does this table
// have?". An empty answer means the object is not of that kind; an error
// means the backend could not be asked.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

// ErrUnsupportedSource is returned for sources without a catalog implementation
var ErrUnsupportedSource = errors.New("catalog not supported for source")

// Catalog is the metadata collaborator used by the lineage builder
type Catalog interface {
	// FetchViewDefinition returns the SQL text of a view, or "" when name is not a view
	FetchViewDefinition(ctx context.Context, name models.ObjectName) (string, error)
	// FetchTableColumns returns column descriptors, or nil when (schema, table) is not a base table
	FetchTableColumns(ctx context.Context, schema, table string) ([]models.ColumnMeta, error)
}

// Open returns the catalog for a saved connection
func Open(ctx context.Context, session *connector.Session, source models.SourceType, conn string) (Catalog, error) {
	if source == models.Databricks {
		client, err := session.Databricks(conn)
		if err != nil {
			return nil, err
		}
		return NewDatabricksCatalog(client, session.Config.DatabricksCatalog, session.Config.FallbackSchema), nil
	}

	dialect, err := DialectFor(source)
	if err != nil {
		return nil, err
	}
	dc, err := session.Connector(ctx, source, conn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection '%s': %w", source.DisplayName(), conn, err)
	}
	return NewSQLCatalog(dc.DB, dialect, session.Logger), nil
}
