package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
)

var rulesCmd = &cobra.Command{
	Use:   "rules <gene>",
	Short: "List the rules of a gene",
	Long: `List the rules of a gene in evaluation order, disabled rules included.

Examples:
  tiers rules KRAS
  tiers rules EGFR --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFormat(cli.FormatTable)
		if err != nil {
			return err
		}

		src, err := openSource(cmd.Context())
		if err != nil {
			return err
		}
		rows, err := src.Rules(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		if quiet {
			return nil
		}
		return cli.PrintRules(cmd.OutOrStdout(), rows, out)
	},
}

var genesCmd = &cobra.Command{
	Use:   "genes",
	Short: "List the genes covered by the table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFormat(cli.FormatTable)
		if err != nil {
			return err
		}

		src, err := openSource(cmd.Context())
		if err != nil {
			return err
		}
		genes, err := src.Genes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list genes: %w", err)
		}

		if quiet {
			return nil
		}
		if len(genes) == 0 && out == cli.FormatTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No genes found")
			return nil
		}
		return cli.PrintGenes(cmd.OutOrStdout(), genes, out)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(genesCmd)
}
