package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    time.Duration
	typeset    bool
	strategy   string
	assets     string
	mathjaxURL string
}

// insertFlags holds flags for the insert command.
type insertFlags struct {
	common  commonFlags
	into    string
	output  string
	timeout time.Duration
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// leaves usage printing to the caller.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseError passes flag.ErrHelp through and marks everything else as a
// usage error.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := newFlagSet("convert")
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-file conversion timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.typeset, "typeset", false, "typeset math in a headless browser")
	fs.StringVar(&f.strategy, "strategy", "", "code block strategy: placeholder, inline")
	fs.StringVar(&f.assets, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.mathjaxURL, "mathjax-url", "", "MathJax script URL or absolute path")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

func parseInsertFlags(args []string) (*insertFlags, []string, error) {
	fs := newFlagSet("insert")
	f := &insertFlags{}

	fs.StringVarP(&f.into, "into", "i", "", "HTML page to insert into (required)")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "conversion timeout (e.g., 30s, 2m)")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}
