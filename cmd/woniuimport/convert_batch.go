package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/woniunote/woniuimport"
	"github.com/woniunote/woniuimport/internal/fileutil"
	"github.com/woniunote/woniuimport/internal/hints"
	"github.com/woniunote/woniuimport/internal/pipeline"
)

// previewPool hands out browser previews to workers.
type previewPool interface {
	Acquire(ctx context.Context) (*woniuimport.BrowserPreview, error)
	Release(*woniuimport.BrowserPreview)
}

var _ previewPool = (*woniuimport.PreviewPool)(nil)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch converts files with up to concurrency workers. When pool is
// non-nil each worker holds one browser preview for its whole run.
func convertBatch(ctx context.Context, files []FileToConvert, concurrency int, pool previewPool, conv *conversion) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var preview *woniuimport.BrowserPreview
			var acquireErr error
			if pool != nil {
				preview, acquireErr = pool.Acquire(ctx)
				if acquireErr == nil {
					defer pool.Release(preview)
				}
			}

			for idx := range jobs {
				err := acquireErr
				if err == nil {
					err = ctx.Err()
				}
				if err != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       err,
					}
					continue
				}
				results[idx] = convertFile(ctx, files[idx], preview, conv)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile imports one file and writes its HTML.
func convertFile(ctx context.Context, f FileToConvert, preview *woniuimport.BrowserPreview, conv *conversion) (result ConversionResult) {
	start := time.Now()
	result = ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	defer func() { result.Duration = time.Since(start) }()

	data, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", woniuimport.ErrReadSource, err)
		return result
	}

	out, err := conv.render(ctx, preview, func(ctx context.Context, imp *woniuimport.Importer) error {
		return imp.ImportFile(ctx, woniuimport.File{Name: filepath.Base(f.InputPath), Data: data})
	})
	if err != nil {
		result.Err = err
		return result
	}

	srcDir := filepath.Dir(f.InputPath)
	if !sameDir(srcDir, filepath.Dir(f.OutputPath)) {
		out, err = pipeline.ResolveRelativeImages(out, srcDir)
		if err != nil {
			result.Err = fmt.Errorf("resolving image paths: %w", err)
			return result
		}
	}

	result.Err = writeOutput(f.OutputPath, out)
	return result
}

// sameDir reports whether a and b name the same directory.
func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// printResults reports each result and returns the failure count with the
// first failure.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) (failed int, firstErr error) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, failureHint(r))
		case quiet:
		case verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed, firstErr
}

// failureHint points legacy .doc failures at re-saving as .docx.
func failureHint(r ConversionResult) string {
	if errors.Is(r.Err, woniuimport.ErrWordConversion) {
		return hints.ForLegacyWord(fileutil.Ext(r.InputPath))
	}
	return ""
}

const outputExt = ".html"

// wordLockPrefix marks the owner files Word keeps next to open documents.
const wordLockPrefix = "~$"

// discoverFiles lists what to import from input: the file itself, or every
// supported file below a directory. Hidden directories and Word lock files
// are skipped.
func discoverFiles(input, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !isSupported(input) {
			return nil, fmt.Errorf("%w: %q", woniuimport.ErrUnsupportedFormat, fileutil.Ext(input))
		}
		return []FileToConvert{{InputPath: input, OutputPath: resolveOutputPath(input, outputDir, "")}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && path != input && strings.HasPrefix(d.Name(), "."):
			return fs.SkipDir
		case d.IsDir(), strings.HasPrefix(d.Name(), wordLockPrefix), !isSupported(path):
			return nil
		}
		files = append(files, FileToConvert{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, input)})
		return nil
	})
	return files, err
}

// resolveOutputPath names the HTML written for input. With no outputDir it
// sits beside input; an outputDir ending in .html is used as is; otherwise
// input's position under root is mirrored inside outputDir.
func resolveOutputPath(input, outputDir, root string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + outputExt
	switch {
	case outputDir == "":
		return filepath.Join(filepath.Dir(input), name)
	case strings.HasSuffix(outputDir, outputExt):
		return outputDir
	case root != "":
		if rel, err := filepath.Rel(root, filepath.Dir(input)); err == nil {
			return filepath.Join(outputDir, rel, name)
		}
	}
	return filepath.Join(outputDir, name)
}

func isSupported(path string) bool {
	return slices.Contains(woniuimport.SupportedExtensions(), fileutil.Ext(path))
}
