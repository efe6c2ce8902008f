package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
	"github.com/TimurManjosov/gotiers/internal/logging"
)

var (
	// Global flags
	tablePath string
	baseURL   string
	apiKey    string
	profile   string
	format    string
	quiet     bool
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Assign clinical tiers to annotated variants",
	Long: `Tiers classifies annotated somatic variants against the curated tier table.

Commands work on a local table file (--table) or, when a server is configured
through --base-url, TIERS_BASE_URL or a profile, against a running tiers server.

Examples:
  tiers classify --gene EGFR --alteration SNV --exon 21 --hgvsp p.L858R
  tiers rules KRAS --table tiers.tsv
  tiers validate --table tiers.tsv
  tiers export --output rules.yaml
  tiers import rules.yaml --output tiers.tsv`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(logging.VerbosityLevel(quiet, verbose), logging.FormatConsole, os.Stderr)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// outputFormat resolves --format, falling back to def when it is unset.
func outputFormat(def cli.OutputFormat) (cli.OutputFormat, error) {
	if format == "" {
		return def, nil
	}
	return cli.ParseFormat(format)
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&tablePath, "table", "tiers.tsv", "Rule table file (local mode)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of a tiers server (remote mode)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key for the tiers server")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Server profile from ~/.tiers/config.yaml")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Output format (table, json, yaml, text)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
