package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: woniuimport <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert Markdown and Word files to editor HTML")
	fmt.Fprintln(w, "  insert     Convert a file and insert it into an HTML page")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'woniuimport help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: woniuimport convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert .md, .docx and .doc files to HTML ready for the editor.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    File, directory, or - to read Markdown text from stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-file timeout (default 1m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --typeset             Typeset math in headless Chrome and save the result")
	fmt.Fprintln(w, "      --strategy <s>        Code blocks: placeholder, inline")
	fmt.Fprintln(w, "      --mathjax-url <url>   MathJax script URL or absolute path")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom templates/ and styles/ directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  WONIUIMPORT_CONFIG, WONIUIMPORT_TIMEOUT, WONIUIMPORT_WORKERS,")
	fmt.Fprintln(w, "  WONIUIMPORT_MATHJAX_URL, WONIUIMPORT_ASSETS, WONIUIMPORT_OUTPUT_DIR")
}

// printInsertUsage prints usage for the insert command.
func printInsertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: woniuimport insert <file> --into <page.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a file and insert it into the page's content element,")
	fmt.Fprintln(w, "rewriting bracket formulas the way the editor dialog does.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -i, --into <path>         HTML page to insert into (required)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Conversion timeout (default 1m)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "insert":
		printInsertUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: woniuimport version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: woniuimport help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
