package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/rules"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule table",
	Long: `Load the local rule table and report every rule that fails validation.
Schema errors (unknown or duplicate columns) stop the check immediately.

Examples:
  tiers validate --table tiers.tsv
  tiers validate --table tiers.tsv --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFormat(cli.FormatText)
		if err != nil {
			return err
		}

		rows, err := loader.LoadTSVFile(tablePath)
		if err != nil {
			return err
		}

		problems := validateRows(rows)
		w := cmd.OutOrStdout()
		if len(problems) > 0 {
			if !quiet {
				if err := cli.PrintProblems(w, problems, out); err != nil {
					return err
				}
			}
			return fmt.Errorf("%d of %d rule(s) failed validation", len(problems), len(rows))
		}

		if !quiet {
			snap := snapshot.Build(rows)
			version := snap.Version
			if version == "" {
				version = "unversioned"
			}
			fmt.Fprintf(w, "%s: %d rules (%d enabled) for %d genes, version %s\n",
				tablePath, snap.Rules, snap.Enabled, snap.Genes, version)
		}
		return nil
	},
}

func validateRows(rows []rules.Rule) []cli.Problem {
	var problems []cli.Problem
	for i, r := range rows {
		if err := rules.ValidateRule(r); err != nil {
			problems = append(problems, cli.Problem{Row: i + 1, Gene: r.Gene, Message: err.Error()})
		}
	}
	return problems
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
