// Package cli parses tariffctl's command-line arguments into a Config,
// following the flag-package conventions the rest of this corpus uses:
// a custom FlagSet with its own usage text, and an ExitError carrying
// the process exit code instead of the parser calling os.Exit itself.
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/tariffgraph/internal/dag"
	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/value"
)

// ExitError is a command-line error that should terminate the process
// with a specific exit code rather than propagate as a generic failure.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Config is the fully-validated result of parsing tariffctl's arguments.
type Config struct {
	DeclarationPath string
	Target          string
	Context         dag.Context
	Trace           bool
	Profile         bool
	LogLevel        string
}

// Parse processes tariffctl's arguments. It returns a populated Config, a
// boolean indicating the program should exit cleanly (e.g. -help was
// given), or an ExitError for a malformed invocation.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("tariffctl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
tariffctl - evaluate a declarative tariff graph against a context.

Usage:
  tariffctl [options] DECLARATION_PATH TARGET_NODE

Arguments:
  DECLARATION_PATH
    Path to a single .hcl file or a directory of .hcl files describing
    one tariff.
  TARGET_NODE
    Name of the node to evaluate and print.

Options:
`)
		flagSet.PrintDefaults()
	}

	contextFlag := flagSet.String("context", "", "Inline context as key=value pairs, comma-separated.")
	contextFileFlag := flagSet.String("context-file", "", "Path to a JSON file of {\"key\": \"value\"} context entries.")
	traceFlag := flagSet.Bool("trace", false, "Print every intermediate node value.")
	profileFlag := flagSet.Bool("profile", false, "Print a per-node timing report after evaluation.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() < 2 {
		flagSet.Usage()
		return nil, true, nil
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	ctx, err := buildContext(*contextFlag, *contextFileFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return &Config{
		DeclarationPath: flagSet.Arg(0),
		Target:          flagSet.Arg(1),
		Context:         ctx,
		Trace:           *traceFlag,
		Profile:         *profileFlag,
		LogLevel:        logLevel,
	}, false, nil
}

func buildContext(inline, filePath string) (dag.Context, error) {
	ctx := make(dag.Context)

	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("reading context file: %w", err)
		}
		var fields map[string]string
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("parsing context file: %w", err)
		}
		for k, v := range fields {
			ctx[k] = parseContextValue(v)
		}
	}

	if inline != "" {
		for _, pair := range strings.Split(inline, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid context entry %q: expected key=value", pair)
			}
			ctx[k] = parseContextValue(v)
		}
	}

	return ctx, nil
}

// parseContextValue treats a raw context entry as decimal when it parses
// as one and as text otherwise, so a caller need not tag "driver_age=22"
// with an explicit type the way an INPUT node's own dtype already does.
func parseContextValue(raw string) value.Value {
	if d, err := decimal.NewFromString(raw); err == nil {
		return value.NewDecimal(d)
	}
	return value.NewText(raw)
}
