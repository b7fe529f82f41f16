package woniuimport

import "github.com/woniunote/woniuimport/internal/config"

// Config holds all configuration for an import. See DefaultConfig for the
// stock values and LoadConfig for the YAML layout.
type Config = config.Config

// DefaultConfig returns the configuration matching the stock editor dialog.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig loads configuration from a file path or a config name searched
// in the current directory and the user config directory.
func LoadConfig(nameOrPath string) (*Config, error) {
	return config.LoadConfig(nameOrPath)
}

// LanguageRuleConfig maps a regular expression over code to a language name
// in Config.Code.Languages.
type LanguageRuleConfig = config.LanguageRule
