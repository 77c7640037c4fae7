package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/catalog"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/profiler"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/spf13/cobra"
)

// sourceFlags select a saved connection or an offline snapshot
type sourceFlags struct {
	source   string
	conn     string
	snapshot string
}

func (f *sourceFlags) register(cmd *cobra.Command, withSnapshot bool) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source type (teradata, azuresql, databricks, mysql, postgres, sqlite)")
	cmd.Flags().StringVarP(&f.conn, "conn", "n", "", "Saved connection name")
	if withSnapshot {
		cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "Read metadata from a YAML catalog snapshot instead of a connection")
	}
}

// openCatalog returns the catalog named by the flags. The session must stay
// open for as long as the catalog is used.
func (a *app) openCatalog(ctx context.Context, session *connector.Session, f *sourceFlags) (catalog.Catalog, models.SourceType, error) {
	if f.snapshot != "" {
		snap, err := catalog.LoadSnapshot(f.snapshot)
		if err != nil {
			return nil, "", err
		}
		source := models.Teradata
		if f.source != "" {
			if source, err = parseSource(f.source); err != nil {
				return nil, "", err
			}
		}
		return snap, source, nil
	}

	if f.source == "" || f.conn == "" {
		return nil, "", fmt.Errorf("either --snapshot or both --source and --conn are required")
	}
	source, err := parseSource(f.source)
	if err != nil {
		return nil, "", err
	}
	cat, err := catalog.Open(ctx, session, source, f.conn)
	if err != nil {
		return nil, "", err
	}
	return cat, source, nil
}

// frameFlags select a dataset: a CSV file or a query against a saved connection
type frameFlags struct {
	sourceFlags
	table string
	query string
}

func (f *frameFlags) register(cmd *cobra.Command) {
	f.sourceFlags.register(cmd, false)
	cmd.Flags().StringVarP(&f.table, "table", "t", "", "Table to read from the connection")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Query to run on the connection")
}

func (a *app) loadFrame(ctx context.Context, f *frameFlags, args []string) (*models.DataFrame, error) {
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return profiler.ReadCSV(file)
	}

	if f.source == "" || f.conn == "" {
		return nil, fmt.Errorf("give a CSV file or --source and --conn")
	}
	source, err := parseSource(f.source)
	if err != nil {
		return nil, err
	}
	query := f.query
	if query == "" {
		if f.table == "" {
			return nil, fmt.Errorf("--table or --query is required with --conn")
		}
		query = "SELECT * FROM " + f.table
	}

	session, err := a.session()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	dc, err := session.Connector(ctx, source, f.conn)
	if err != nil {
		return nil, err
	}
	a.logger.Infof("Loading data from %s '%s'", source.DisplayName(), f.conn)
	return dc.QueryFrame(ctx, query)
}
