package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/gotiers/internal/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage server profiles",
	Long:  `Manage the server profiles stored in ~/.tiers/config.yaml.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.InitConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		configPath, _ := cli.GetConfigPath()
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", configPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List server profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		w := cmd.OutOrStdout()
		def := cfg.DefaultProfile
		if def == "" {
			def = "(none, local table)"
		}
		fmt.Fprintf(w, "Default Profile: %s\n\n", def)
		fmt.Fprintln(w, "Profiles:")

		names := make([]string, 0, len(cfg.Profiles))
		for name := range cfg.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			p := cfg.Profiles[name]
			fmt.Fprintf(w, "  %s:\n", name)
			fmt.Fprintf(w, "    base_url: %s\n", p.BaseURL)
			// Mask API key for security
			maskedKey := "***"
			if len(p.APIKey) > 4 {
				maskedKey = p.APIKey[:4] + "***"
			}
			fmt.Fprintf(w, "    api_key: %s\n", maskedKey)
		}
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Set the default profile",
	Long: `Set the profile used when neither --profile nor --base-url is given.
"tiers config use none" goes back to the local table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		name := args[0]
		if name == "none" {
			name = ""
		} else if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile '%s' not found", name)
		}
		cfg.DefaultProfile = name

		if err := cli.SaveConfig(cfg); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to %q\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configUseCmd)
}
