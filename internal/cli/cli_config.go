package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CLIConfig represents the configuration for the CLI
type CLIConfig struct {
	ServerURL string `yaml:"serverURL"`
	TokenPath string `yaml:"tokenPath"`
	Module    string `yaml:"module"`
}

// LoadCLIConfig loads configuration from multiple sources in order of precedence:
// 1. Flags (handled by caller)
// 2. Environment variables
// 3. Config file (~/.propbind/config.yaml)
func LoadCLIConfig() (*CLIConfig, error) {
	path := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(homeDir, ".propbind", "config.yaml")
	}
	return loadCLIConfig(path, os.Getenv)
}

func loadCLIConfig(path string, getenv func(string) string) (*CLIConfig, error) {
	config := &CLIConfig{Module: "server"}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if envURL := getenv("PROPBIND_SERVER_URL"); envURL != "" {
		config.ServerURL = envURL
	}
	if envToken := getenv("PROPBIND_TOKEN_PATH"); envToken != "" {
		config.TokenPath = envToken
	}

	return config, nil
}
