package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/lineage"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/presenter"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/spf13/cobra"
)

func newLineageCmd(a *app) *cobra.Command {
	var (
		flags   sourceFlags
		format  string
		dotFile string
	)

	cmd := &cobra.Command{
		Use:   "lineage VIEW",
		Short: "Resolve the views and tables a view depends on",
		Long: `Resolve the views and tables a view depends on.

VIEW may be qualified (schema.view); unqualified names are looked up in the
configured fallback schema when they turn out to be tables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.session()
			if err != nil {
				return err
			}
			defer session.Close()

			cat, _, err := a.openCatalog(ctx, session, &flags)
			if err != nil {
				return err
			}

			builder := lineage.NewBuilder(cat, a.cfg.FallbackSchema, a.logger)
			builder.MaxDepth = a.cfg.MaxDepth

			result, err := builder.Build(ctx, models.ParseObjectName(args[0]))
			if err != nil {
				return err
			}

			if dotFile != "" {
				if err := writeDOTFile(dotFile, result.Graph); err != nil {
					return err
				}
				a.logger.Infof("Wrote lineage graph to %s", dotFile)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				return presenter.WriteReport(out, presenter.BuildReport(result))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Report *presenter.Report `json:"report"`
					Layout *presenter.Layout `json:"layout"`
				}{presenter.BuildReport(result), presenter.ComputeLayout(result.Graph)})
			case "dot":
				return presenter.WriteDOT(out, result.Graph)
			default:
				return fmt.Errorf("unknown format %q (expected text, json or dot)", format)
			}
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format (text, json, dot)")
	cmd.Flags().StringVar(&dotFile, "dot", "", "Also write the graph in Graphviz format to this file")
	cmd.Flags().Int("max-depth", 0, "Stop expanding views below this depth (0 = unlimited)")
	return cmd
}

func writeDOTFile(path string, g *lineage.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := presenter.WriteDOT(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
