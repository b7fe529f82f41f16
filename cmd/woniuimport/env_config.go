package main

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/woniunote/woniuimport/internal/config"
)

const envPrefix = "WONIUIMPORT_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string        // WONIUIMPORT_CONFIG: config file name or path
	Timeout    time.Duration // WONIUIMPORT_TIMEOUT: per-file conversion timeout
	Workers    int           // WONIUIMPORT_WORKERS: parallel workers
	MathJaxURL string        // WONIUIMPORT_MATHJAX_URL: MathJax script URL
	Assets     string        // WONIUIMPORT_ASSETS: custom asset directory
	OutputDir  string        // WONIUIMPORT_OUTPUT_DIR: default output directory
}

// knownEnvVars lists valid WONIUIMPORT_* environment variables.
var knownEnvVars = map[string]bool{
	"WONIUIMPORT_CONFIG":      true,
	"WONIUIMPORT_TIMEOUT":     true,
	"WONIUIMPORT_WORKERS":     true,
	"WONIUIMPORT_MATHJAX_URL": true,
	"WONIUIMPORT_ASSETS":      true,
	"WONIUIMPORT_OUTPUT_DIR":  true,
}

// loadEnvConfig reads WONIUIMPORT_* values through getenv. Unparsable or
// non-positive timeout and worker values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("WONIUIMPORT_CONFIG"),
		MathJaxURL: getenv("WONIUIMPORT_MATHJAX_URL"),
		Assets:     getenv("WONIUIMPORT_ASSETS"),
		OutputDir:  getenv("WONIUIMPORT_OUTPUT_DIR"),
	}

	if timeout := getenv("WONIUIMPORT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("WONIUIMPORT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized WONIUIMPORT_*
// variable in environ.
func warnUnknownEnvVars(environ []string, logger *zap.Logger) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", zap.String("name", name))
		}
	}
}

// applyEnvConfig overrides file values with the environment's. Flags are
// merged afterwards, giving flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.MathJaxURL != "" {
		cfg.MathJax.ScriptURL = env.MathJaxURL
	}
	if env.Assets != "" {
		cfg.Assets.BasePath = env.Assets
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
}
