package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
	"github.com/TimurManjosov/gotiers/internal/engine"
)

var classifyQuery engine.Query

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Assign a tier to one variant",
	Long: `Classify one annotated variant and print its tier, or "none" when no rule applies.

Examples:
  tiers classify --gene EGFR --alteration SNV --exon 21 --csq missense_variant --hgvsp p.L858R
  tiers classify --gene ERBB2 --alteration Amplification --format json
  tiers classify --gene TP53 --alteration SNV --force-gene`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFormat(cli.FormatText)
		if err != nil {
			return err
		}

		q := classifyQuery
		q.Gene = strings.TrimSpace(q.Gene)
		q.Alteration = strings.TrimSpace(q.Alteration)
		if q.Gene == "" || q.Alteration == "" {
			return fmt.Errorf("--gene and --alteration are required")
		}

		src, err := openSource(cmd.Context())
		if err != nil {
			return err
		}
		res, err := src.Classify(cmd.Context(), q)
		if err != nil {
			return err
		}

		if quiet {
			return nil
		}
		return cli.PrintResult(cmd.OutOrStdout(), cli.NewClassifyView(q, res), out)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	f := classifyCmd.Flags()
	f.StringVar(&classifyQuery.Gene, "gene", "", "Gene symbol (required)")
	f.StringVar(&classifyQuery.Alteration, "alteration", "", "Alteration class: SNV, Deletion, Insertion, Amplification, Fusion, ... (required)")
	f.StringVar(&classifyQuery.Exon, "exon", "", "Exon number")
	f.StringVar(&classifyQuery.Intron, "intron", "", "Intron number")
	f.StringVar(&classifyQuery.Consequence, "csq", "", "Comma-separated consequence terms")
	f.StringVar(&classifyQuery.HGVSp, "hgvsp", "", "Protein change, with or without the p. prefix")
	f.BoolVar(&classifyQuery.ForceGene, "force-gene", false, "Fail when the gene has no rules")
}
