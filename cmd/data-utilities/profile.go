package main

import (
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/profiler"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		flags frameFlags
		opts  = profiler.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "profile [CSV]",
		Short: "Clean and profile a dataset",
		Long: `Clean and profile a dataset read from a CSV file or a saved connection.

Date, boolean, category and symbolic numeric columns are converted, missing
numbers are replaced by the column mean and duplicate rows are dropped before
descriptive statistics and outlier counts are computed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := a.loadFrame(cmd.Context(), &flags, args)
			if err != nil {
				return err
			}

			profile := profiler.NewProfiler(opts, a.logger).Run(df)
			return profiler.WriteProfile(cmd.OutOrStdout(), profile)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&opts.CategoryLimit, "category-limit", opts.CategoryLimit, "Text columns with fewer distinct values become categories")
	cmd.Flags().StringVar(&opts.KeyColumn, "key", "", "Column checked for duplicate keys")
	cmd.Flags().StringVar(&opts.GroupColumn, "group", "", "Column checked for values shared by several rows")
	cmd.Flags().IntVar(&opts.PreviewRows, "preview", opts.PreviewRows, "Number of rows shown before cleaning")
	return cmd
}
