package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/quality"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errChecksFailed = errors.New("data quality checks failed")

func newQualityCmd(a *app) *cobra.Command {
	var (
		flags     frameFlags
		rulesFile string
		nulls     []string
		types     []string
		ranges    []string
	)

	cmd := &cobra.Command{
		Use:   "quality [CSV]",
		Short: "Run null, duplicate, type and range checks on a dataset",
		Long: `Run null, duplicate, type and range checks on a dataset.

Rules come from --rules (YAML with null_columns, types and ranges) and from the
--nulls, --type column=type and --range column=min:max flags. Duplicate rows
are always checked. The command fails when any check finds a problem.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := loadRules(rulesFile, nulls, types, ranges)
			if err != nil {
				return err
			}

			df, err := a.loadFrame(cmd.Context(), &flags, args)
			if err != nil {
				return err
			}

			report, err := quality.Run(df, rules, a.logger)
			if err != nil {
				return err
			}
			if err := quality.WriteReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Passed() {
				return errChecksFailed
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with quality rules")
	cmd.Flags().StringSliceVar(&nulls, "nulls", nil, "Columns to count nulls in")
	cmd.Flags().StringArrayVar(&types, "type", nil, "Expected type as column=type (int, float, bool, date, datetime, str)")
	cmd.Flags().StringArrayVar(&ranges, "range", nil, "Allowed range as column=min:max")
	return cmd
}

func loadRules(path string, nulls, types, ranges []string) (quality.Rules, error) {
	var rules quality.Rules
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return rules, fmt.Errorf("read rules: %w", err)
		}
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return rules, fmt.Errorf("parse rules %s: %w", path, err)
		}
	}

	rules.NullColumns = append(rules.NullColumns, nulls...)
	for _, s := range types {
		col, typ, err := quality.ParseTypeRule(s)
		if err != nil {
			return rules, err
		}
		if rules.Types == nil {
			rules.Types = make(map[string]string)
		}
		rules.Types[col] = typ
	}
	for _, s := range ranges {
		col, r, err := quality.ParseRangeRule(s)
		if err != nil {
			return rules, err
		}
		if rules.Ranges == nil {
			rules.Ranges = make(map[string]quality.Range)
		}
		rules.Ranges[col] = r
	}
	return rules, nil
}
