// Package config loads kimi-coder-mcp configuration from global and
// local files plus environment variables.
// Priority: environment variables > local config > global config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration represents the kimi-coder-mcp server configuration.
type Configuration struct {
	KimiCmd   string   `koanf:"kimi_cmd" validate:"required"`
	KimiArgs  []string `koanf:"kimi_args"`
	Mode      string   `koanf:"mode" validate:"required,oneof=oneshot interactive"`
	Workspace string   `koanf:"workspace" validate:"required"`
	Timeout   int      `koanf:"timeout" validate:"min=1,max=86400"` // seconds
	APIKey    string   `koanf:"api_key"`
	LogLevel  string   `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// Load loads configuration from global, local, and environment sources.
// Local files may be JSON or YAML, selected by extension.
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	// Global config if it exists
	homeDir, err := os.UserHomeDir()
	if err == nil {
		globalPath := filepath.Join(homeDir, ".kimi-coder-mcp", "config.json")
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	// Local config if it exists
	if localConfigPath != "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			if err := k.Load(file.Provider(localConfigPath), parserFor(localConfigPath)); err != nil {
				return nil, fmt.Errorf("failed to load local config: %w", err)
			}
		}
	}

	// Environment variables win
	k.Load(env.Provider("KIMI_MCP_", ".", envTransform), nil)

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvAliases(&cfg)
	cfg.Workspace = expandHomePath(cfg.Workspace)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvAliases honors the wrapped CLI's own environment conventions:
// KIMI_TIMEOUT for the execution deadline and MOONSHOT_API_KEY or
// KIMI_API_KEY for the credential, checked in that order.
func applyEnvAliases(cfg *Configuration) {
	if v := os.Getenv("KIMI_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Timeout = secs
		}
	}
	if cfg.APIKey == "" {
		for _, name := range []string{"MOONSHOT_API_KEY", "KIMI_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				cfg.APIKey = v
				break
			}
		}
	}
}

// parserFor selects the koanf parser by file extension.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}

// envTransform converts environment variable names to config keys.
// Example: KIMI_MCP_LOG_LEVEL -> log_level
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "KIMI_MCP_"))
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
