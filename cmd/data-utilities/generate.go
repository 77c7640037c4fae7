package main

import (
	"fmt"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/generator"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/populator"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		flags      sourceFlags
		target     string
		req        generator.Request
		populate   int
		targetConn string
		create     bool
		seed       int64
		nullRate   float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the STTM, DDL and ETL scripts for moving a table",
		Long: `Generate the source-to-target mapping sheet, the target DDL and the
INSERT ... SELECT script for moving a table between platforms.

With --populate N the generated table is also filled with N rows of realistic
sample data on the --target-conn connection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := a.session()
			if err != nil {
				return err
			}
			defer session.Close()

			cat, source, err := a.openCatalog(ctx, session, &flags)
			if err != nil {
				return err
			}
			req.Source = source
			if req.Target, err = parseSource(target); err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}

			columns, err := cat.FetchTableColumns(ctx, req.SourceSchema, req.SourceTable)
			if err != nil {
				return fmt.Errorf("fetch columns of %s.%s: %w", req.SourceSchema, req.SourceTable, err)
			}
			docs, err := generator.Generate(req, columns)
			if err != nil {
				return err
			}

			files, err := generator.WriteFiles(a.cfg.OutputDir, docs, a.logger)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}

			if populate <= 0 {
				return nil
			}
			if targetConn == "" {
				return fmt.Errorf("--target-conn is required with --populate")
			}

			// Create database connector
			db, err := session.Connector(ctx, req.Target, targetConn)
			if err != nil {
				return err
			}

			// Create data generator
			dataGenerator := generator.NewDataGenerator(a.logger)
			if cmd.Flags().Changed("seed") {
				dataGenerator = generator.NewDataGeneratorWithSeed(seed, a.logger)
			}
			dataGenerator.NullRate = nullRate

			// Create database populator
			dbPopulator := populator.NewDatabasePopulator(db, dataGenerator, populate, a.logger)
			if create {
				if err := dbPopulator.CreateTable(ctx, docs.DDL); err != nil {
					return err
				}
			}

			table := req.TargetSchema + "." + req.TargetTable
			inserted, err := dbPopulator.PopulateTable(ctx, table, docs.Columns)
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d of %d rows into %s\n", inserted, populate, table)
			return err
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&target, "target", "", "Target platform (teradata, azuresql, databricks)")
	cmd.Flags().StringVar(&req.SourceSchema, "source-schema", "", "Source schema")
	cmd.Flags().StringVar(&req.SourceTable, "source-table", "", "Source table")
	cmd.Flags().StringVar(&req.TargetSchema, "target-schema", "", "Target schema")
	cmd.Flags().StringVar(&req.TargetTable, "target-table", "", "Target table")
	cmd.Flags().String("out", "", "Output directory (default: output_dir from config)")
	cmd.Flags().IntVarP(&populate, "populate", "r", 0, "Number of sample rows to insert into the target table")
	cmd.Flags().StringVar(&targetConn, "target-conn", "", "Saved connection of the target platform used by --populate")
	cmd.Flags().BoolVar(&create, "create", false, "Run the generated DDL before populating")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible sample data")
	cmd.Flags().Float64Var(&nullRate, "null-rate", 0.1, "Share of NULL values in nullable columns")
	return cmd
}
