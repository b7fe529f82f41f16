package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/woniunote/woniuimport"
	"github.com/woniunote/woniuimport/internal/editor"
)

// runInsertCmd parses flags, runs the insert command and reports errors.
func runInsertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseInsertFlags(args)
	if err != nil {
		return flagFailure(err, printInsertUsage, env)
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	ec := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Environ(), logger)

	if err := runInsert(ctx, positional, flags, ec, logger, env); err != nil {
		return report(env, err, configName(flags.common, ec))
	}
	return ExitSuccess
}

// runInsert converts one file, confirms it into the --into page and writes
// the page.
func runInsert(ctx context.Context, args []string, flags *insertFlags, ec *envConfig, logger *zap.Logger, env *Environment) error {
	inputPath, err := resolveInputPath(args)
	if err != nil {
		return err
	}
	if flags.into == "" {
		return fmt.Errorf("%w: --into is required", ErrUsage)
	}

	cfg, err := loadConfig(configName(flags.common, ec), ec)
	if err != nil {
		return err
	}
	timeout, err := resolveTimeout(flags.timeout, ec.Timeout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", woniuimport.ErrReadSource, err)
	}
	page, err := os.ReadFile(flags.into) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", woniuimport.ErrReadSource, err)
	}

	doc, err := editor.ParseString(string(page),
		editor.WithContentElementID(cfg.MathJax.ContentElementID),
		editor.WithFallbackSelector(cfg.MathJax.FallbackSelector),
	)
	if err != nil {
		return err
	}

	// No one watches the page render, so the post-insert steps run at once.
	imp, err := woniuimport.NewImporter(
		woniuimport.WithConfig(cfg),
		woniuimport.WithLogger(logger),
		woniuimport.WithInsertDelay(0),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := imp.ImportFile(ctx, woniuimport.File{Name: filepath.Base(inputPath), Data: data}); err != nil {
		return err
	}
	if err := imp.Confirm(ctx, woniuimport.NewDocumentEditor(doc)); err != nil {
		return err
	}

	out, err := doc.Render()
	if err != nil {
		return err
	}
	logger.Debug("inserted", zap.String("source", inputPath), zap.String("page", flags.into), zap.Int("scenes", doc.Scenes()))

	if flags.output == "" {
		if _, err := io.WriteString(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	return writeOutput(flags.output, out)
}
