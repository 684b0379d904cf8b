package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/tariffgraph/internal/cli"
	"github.com/specialistvlad/tariffgraph/internal/ctxlog"
	"github.com/specialistvlad/tariffgraph/internal/dag"
	"github.com/specialistvlad/tariffgraph/internal/declaration"
	"github.com/specialistvlad/tariffgraph/internal/profiler"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "a critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	graph, tables, err := declaration.Load(ctx, cfg.DeclarationPath)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	eval := dag.NewEvaluator(graph, tables)

	var trace *dag.Trace
	if cfg.Trace {
		trace = dag.NewTrace()
	}
	var prof *profiler.Profiler
	if cfg.Profile {
		prof = profiler.New()
	}

	result, err := eval.EvaluateTraced(ctx, cfg.Target, cfg.Context, trace, prof)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	fmt.Fprintf(outW, "%s = %s\n", cfg.Target, result.String())

	if trace != nil {
		fmt.Fprintln(outW, "\ntrace:")
		for _, name := range trace.Entries() {
			entry, _ := trace.Get(name)
			fmt.Fprintf(outW, "  %-24s %-10s %s\n", name, entry.Kind, entry.Value.String())
		}
	}

	if prof != nil {
		fmt.Fprintln(outW, "\n"+prof.Report(10))
	}

	return nil
}
