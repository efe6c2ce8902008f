package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration: named tier servers the CLI can
// classify against instead of a local table.
type Config struct {
	DefaultProfile string             `yaml:"default_profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one remote tier server.
type Profile struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"` // admin key, only needed for reloads
}

// Environment variables consulted by ResolveProfile.
const (
	EnvBaseURL = "TIERS_BASE_URL"
	EnvAPIKey  = "TIERS_API_KEY"
)

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tiers", "config.yaml"), nil
}

// LoadConfig loads the configuration from file. A missing file yields an
// empty configuration.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Profiles: make(map[string]Profile)}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolveProfile picks the remote server to talk to.
// Priority: command flags > environment variables > config file.
// It returns nil when no server is configured, meaning the CLI works on a
// local table.
func ResolveProfile(profileName, baseURLFlag, apiKeyFlag string) (*Profile, error) {
	apiKey := apiKeyFlag
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}

	if baseURLFlag != "" {
		return &Profile{BaseURL: baseURLFlag, APIKey: apiKey}, nil
	}
	if envBaseURL := os.Getenv(EnvBaseURL); envBaseURL != "" {
		return &Profile{BaseURL: envBaseURL, APIKey: apiKey}, nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	name := profileName
	if name == "" {
		name = cfg.DefaultProfile
	}
	if name == "" {
		return nil, nil
	}

	p, ok := cfg.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found in config", name)
	}
	if p.BaseURL == "" {
		return nil, fmt.Errorf("base_url must be configured for profile '%s'", name)
	}
	if apiKey != "" {
		p.APIKey = apiKey
	}
	return &p, nil
}

// InitConfig creates a config file with example profiles. No default profile
// is set, so commands keep using the local table until one is chosen.
func InitConfig() error {
	cfg := &Config{
		Profiles: map[string]Profile{
			"local": {BaseURL: "http://localhost:8080", APIKey: "admin-123"},
			"prod":  {BaseURL: "https://tiers.example.com"},
		},
	}
	return SaveConfig(cfg)
}
