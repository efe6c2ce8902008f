package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
	"github.com/TimurManjosov/gotiers/internal/client"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/rules"
	"github.com/TimurManjosov/gotiers/internal/store"
)

var (
	importOutput string
	importDryRun bool
	importReload bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a YAML file into a TSV table",
	Long: `Validate a YAML rule document and write it as a tab-separated rule table.
An existing table is replaced atomically. With --reload the configured server
is asked to reload its table afterwards.

Examples:
  tiers import rules.yaml --output tiers.tsv
  tiers import rules.yaml --dry-run
  tiers import rules.yaml --output /srv/tiers/tiers.tsv --reload --profile prod`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		rows, err := loader.ReadYAML(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("no rules found in file")
		}

		w := cmd.OutOrStdout()
		if verbose {
			fmt.Fprintf(w, "Found %d rule(s) to import\n", len(rows))
		}

		// Dry run mode - just validate and show what would be imported
		if importDryRun {
			if !quiet {
				fmt.Fprintln(w, "Dry run mode - the following rules would be imported:")
				return cli.PrintRules(w, rows, cli.FormatTable)
			}
			return nil
		}

		target := importOutput
		if target == "" {
			target = tablePath
		}
		if err := writeTable(cmd.Context(), target, rows); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(w, "Imported %d rule(s) into %s\n", len(rows), target)
		}

		if importReload {
			return reloadServer(cmd.Context(), cmd)
		}
		return nil
	},
}

// writeTable replaces an existing table through the TSV store or creates a new one.
func writeTable(ctx context.Context, path string, rows []rules.Rule) error {
	st, err := store.NewTSVStore(path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
		if err := loader.WriteTSV(f, rows); err != nil {
			f.Close()
			return fmt.Errorf("failed to write table: %w", err)
		}
		return f.Close()
	}
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ReplaceRules(ctx, rows)
}

func reloadServer(ctx context.Context, cmd *cobra.Command) error {
	p, err := cli.ResolveProfile(profile, baseURL, apiKey)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if p == nil {
		return fmt.Errorf("no server configured, use --base-url or --profile")
	}

	resp, err := client.NewClient(p.BaseURL, p.APIKey).Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	if !quiet {
		state := "unchanged"
		if resp.Changed {
			state = "updated"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Server table %s: %d rule(s), etag %s\n", state, resp.Rules, resp.ETag)
	}
	return nil
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the server to reload its rule table",
	Long: `Trigger a table reload on a tiers server. Requires the admin API key.

Examples:
  tiers reload --base-url http://localhost:8080 --api-key admin-123
  tiers reload --profile prod`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reloadServer(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reloadCmd)

	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Table file to write (default: --table)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without writing")
	importCmd.Flags().BoolVar(&importReload, "reload", false, "Reload the configured server afterwards")
}
