package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// run dispatches a command and returns the process exit code.
func run(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "convert":
		return runConvertCmd(ctx, rest, env)
	case "insert":
		return runInsertCmd(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "woniuimport %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// flagFailure handles a flag parsing error: help requests print usage to
// stdout and succeed, anything else prints usage to stderr.
func flagFailure(err error, usage func(io.Writer), env *Environment) int {
	if errors.Is(err, flag.ErrHelp) {
		usage(env.Stdout)
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
	usage(env.Stderr)
	return exitCodeFor(err)
}

// report prints err with its hint and returns the matching exit code.
func report(env *Environment, err error, configName string) int {
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, configName, env.Getenv))
	return exitCodeFor(err)
}
