package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/woniunote/woniuimport"
	"github.com/woniunote/woniuimport/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrNoSources          = errors.New("no importable files found")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// defaultTimeout bounds one file's conversion when neither the flag nor
// the environment sets a timeout.
const defaultTimeout = time.Minute

// stdinArg names standard input as the convert source.
const stdinArg = "-"

// conversion holds what every conversion in a run shares.
type conversion struct {
	cfg     *config.Config
	logger  *zap.Logger
	timeout time.Duration
}

// previewOptions configures browser previews for the run.
func (c *conversion) previewOptions() []woniuimport.BrowserOption {
	return []woniuimport.BrowserOption{
		woniuimport.WithPreviewConfig(c.cfg),
		woniuimport.WithPreviewLogger(c.logger),
		woniuimport.WithPreviewTimeout(c.timeout),
	}
}

// newImporter builds an importer. A non-nil preview serves as both the
// dialog and the math engine.
func (c *conversion) newImporter(preview *woniuimport.BrowserPreview) (*woniuimport.Importer, error) {
	opts := []woniuimport.Option{
		woniuimport.WithConfig(c.cfg),
		woniuimport.WithLogger(c.logger),
	}
	if preview != nil {
		opts = append(opts, woniuimport.WithDialog(preview), woniuimport.WithMathEngine(preview))
	}
	return woniuimport.NewImporter(opts...)
}

// render runs importFn on a fresh importer and returns the HTML it
// produced: the preview's typeset snapshot when preview is set, the
// pending result otherwise.
func (c *conversion) render(ctx context.Context, preview *woniuimport.BrowserPreview, importFn func(context.Context, *woniuimport.Importer) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	imp, err := c.newImporter(preview)
	if err != nil {
		return "", err
	}
	if preview != nil {
		if err := preview.Load(ctx); err != nil {
			return "", err
		}
	}
	if err := importFn(ctx, imp); err != nil {
		return "", err
	}
	if preview != nil {
		return preview.Snapshot(ctx)
	}
	out, ok := imp.Result()
	if !ok {
		return "", woniuimport.ErrNoResult
	}
	return out, nil
}

// runConvertCmd parses flags, runs the convert command and reports errors.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return flagFailure(err, printConvertUsage, env)
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	ec := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Environ(), logger)

	if err := runConvert(ctx, positional, flags, ec, logger, env); err != nil {
		return report(env, err, configName(flags.common, ec))
	}
	return ExitSuccess
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, flags *convertFlags, ec *envConfig, logger *zap.Logger, env *Environment) error {
	cfg, err := loadConfig(configName(flags.common, ec), ec)
	if err != nil {
		return err
	}
	mergeConvertFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	workers := flags.workers
	if workers == 0 {
		workers = ec.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}

	timeout, err := resolveTimeout(flags.timeout, ec.Timeout)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(args)
	if err != nil {
		return err
	}

	// Surface config and asset errors once rather than per file.
	if _, err := woniuimport.NewImporter(woniuimport.WithConfig(cfg)); err != nil {
		return err
	}

	conv := &conversion{cfg: cfg, logger: logger, timeout: timeout}

	if inputPath == stdinArg {
		return convertStdin(ctx, flags, conv, env)
	}

	files, err := discoverFiles(inputPath, cfg.Output.DefaultDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoSources, inputPath)
	}

	size := woniuimport.ResolvePoolSize(workers)
	logger.Debug("starting conversion", zap.Int("files", len(files)), zap.Int("workers", size), zap.Bool("typeset", flags.typeset))

	var pool previewPool
	if flags.typeset {
		pp := woniuimport.NewPreviewPool(size, conv.previewOptions()...)
		defer func() {
			if err := pp.Close(); err != nil {
				logger.Warn("closing browser previews", zap.Error(err))
			}
		}()
		pool = pp
	}

	results := convertBatch(ctx, files, size, pool, conv)

	failed, firstErr := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", failed, firstErr)
	}
	return nil
}

// convertStdin converts Markdown text read from stdin, writing to the
// output flag or stdout.
func convertStdin(ctx context.Context, flags *convertFlags, conv *conversion, env *Environment) error {
	data, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", woniuimport.ErrReadSource, err)
	}

	var preview *woniuimport.BrowserPreview
	if flags.typeset {
		preview = woniuimport.NewBrowserPreview(conv.previewOptions()...)
		defer func() { _ = preview.Close() }()
	}

	out, err := conv.render(ctx, preview, func(ctx context.Context, imp *woniuimport.Importer) error {
		return imp.ImportText(ctx, string(data))
	})
	if err != nil {
		return err
	}

	if flags.output == "" {
		if _, err := io.WriteString(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	return writeOutput(flags.output, out)
}

// configName picks the config to load: flag first, then environment.
func configName(common commonFlags, ec *envConfig) string {
	if common.config != "" {
		return common.config
	}
	return ec.ConfigPath
}

// loadConfig loads the named config, or the defaults when name is empty,
// and applies environment overrides.
func loadConfig(name string, ec *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(ec, cfg)
	return cfg, nil
}

// mergeConvertFlags applies explicitly set flags over cfg.
func mergeConvertFlags(flags *convertFlags, cfg *config.Config) {
	if flags.strategy != "" {
		cfg.Code.Strategy = flags.strategy
	}
	if flags.assets != "" {
		cfg.Assets.BasePath = flags.assets
	}
	if flags.mathjaxURL != "" {
		cfg.MathJax.ScriptURL = flags.mathjaxURL
	}
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
}

// resolveTimeout picks the flag timeout, then the environment's, then the
// default.
func resolveTimeout(flagTimeout, envTimeout time.Duration) (time.Duration, error) {
	if flagTimeout < 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, flagTimeout)
	}
	if flagTimeout > 0 {
		return flagTimeout, nil
	}
	if envTimeout > 0 {
		return envTimeout, nil
	}
	return defaultTimeout, nil
}

// resolveInputPath returns the single positional input.
func resolveInputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > woniuimport.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, woniuimport.MaxPoolSize)
	}
	return nil
}

// writeOutput writes content to path, creating parent directories.
func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err)
	}
	// #nosec G306 -- HTML output is meant to be readable
	if err := os.WriteFile(path, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
