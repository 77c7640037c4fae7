package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/utils"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newConnectorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connector",
		Short: "Manage saved database connections",
	}
	cmd.AddCommand(newConnectorAddCmd(a), newConnectorListCmd(a), newConnectorRemoveCmd(a), newConnectorTestCmd(a))
	return cmd
}

func parseSource(s string) (models.SourceType, error) {
	source, ok := models.ParseSourceType(s)
	if !ok {
		var keys []string
		for _, st := range models.SourceTypes {
			keys = append(keys, string(st))
		}
		return "", fmt.Errorf("%w: %s (expected one of %s)", connector.ErrUnknownSource, s, strings.Join(keys, ", "))
	}
	return source, nil
}

func newConnectorAddCmd(a *app) *cobra.Command {
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "add SOURCE NAME",
		Short: "Save or update the credentials of a connection",
		Long: `Save or update the credentials of a connection.

Fields not given with --field are read from the environment as
<SOURCE>_<FIELD>, for example TERADATA_PASSWORD or DATABRICKS_ACCESS_TOKEN.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseSource(args[0])
			if err != nil {
				return err
			}

			values := make(map[string]string, len(fields))
			for k, v := range fields {
				values[k] = v
			}
			// Get connection parameters from environment if not provided
			for _, key := range connector.RequiredFields[source] {
				if values[key] == "" {
					values[key] = os.Getenv(strings.ToUpper(string(source) + "_" + key))
				}
			}

			session, err := a.session()
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Store.Store(source, args[1], values); err != nil {
				return err
			}
			return session.Store.Save()
		},
	}

	cmd.Flags().StringToStringVarP(&fields, "field", "f", nil, "Credential field as key=value (repeatable)")
	return cmd
}

func newConnectorListCmd(a *app) *cobra.Command {
	var showFields bool

	cmd := &cobra.Command{
		Use:   "list [SOURCE]",
		Short: "List saved connections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := models.SourceTypes
			if len(args) == 1 {
				source, err := parseSource(args[0])
				if err != nil {
					return err
				}
				sources = []models.SourceType{source}
			}

			session, err := a.session()
			if err != nil {
				return err
			}
			defer session.Close()

			t := utils.NewTable(cmd.OutOrStdout())
			if showFields {
				t.AppendHeader(table.Row{"Source", "Connection", "Fields"})
			} else {
				t.AppendHeader(table.Row{"Source", "Connection"})
			}

			for _, source := range sources {
				for _, name := range session.SavedConnections(source) {
					if !showFields {
						t.AppendRow(table.Row{source.DisplayName(), name})
						continue
					}
					creds, err := session.Store.Get(source, name, nil)
					if err != nil {
						return err
					}
					t.AppendRow(table.Row{source.DisplayName(), name, describeFields(creds)})
				}
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFields, "show", false, "Show stored fields with secrets masked")
	return cmd
}

func describeFields(creds map[string]string) string {
	keys := make([]string, 0, len(creds))
	for k := range creds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := creds[k]
		if utils.IsSecretKey(k) {
			v = utils.MaskSecret(v)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, "\n")
}

func newConnectorRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove SOURCE NAME",
		Short: "Delete a saved connection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseSource(args[0])
			if err != nil {
				return err
			}

			session, err := a.session()
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Store.Remove(source, args[1]); err != nil {
				return err
			}
			return session.Store.Save()
		},
	}
}

func newConnectorTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test SOURCE NAME",
		Short: "Check that a saved connection can be opened",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseSource(args[0])
			if err != nil {
				return err
			}

			session, err := a.session()
			if err != nil {
				return err
			}
			defer session.Close()

			if source == models.Databricks {
				client, err := session.Databricks(args[1])
				if err != nil {
					return err
				}
				catalogs, err := client.ListCatalogs(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connected to Databricks: %d catalogs visible\n", len(catalogs))
				return nil
			}

			dc, err := session.Connector(cmd.Context(), source, args[1])
			if err != nil {
				return err
			}
			version, err := dc.ServerVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s '%s': %s\n", source.DisplayName(), args[1], version)
			return nil
		},
	}
}
