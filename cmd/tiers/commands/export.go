package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the rule table",
	Long: `Export every rule of the table as YAML (default), JSON or a TSV table (--format text).
The document carries the table version.

Examples:
  tiers export --output rules.yaml
  tiers export --base-url http://localhost:8080 --format json > rules.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFormat(cli.FormatYAML)
		if err != nil {
			return err
		}

		src, err := openSource(cmd.Context())
		if err != nil {
			return err
		}
		rows, err := src.All(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read rules: %w", err)
		}
		version := snapshot.Build(rows).Version

		// Determine output destination
		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		switch out {
		case cli.FormatJSON:
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			err = encoder.Encode(loader.Document{Version: version, Rules: rows})
		case cli.FormatText:
			err = loader.WriteTSV(w, rows)
		case cli.FormatYAML, cli.FormatTable:
			err = loader.WriteYAML(w, version, rows)
		}
		if err != nil {
			return fmt.Errorf("failed to export rules: %w", err)
		}

		if exportOutput != "" && exportOutput != "-" && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Successfully exported %d rule(s) to %s\n", len(rows), exportOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}
