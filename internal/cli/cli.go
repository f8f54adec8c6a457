// Package cli implements the dq command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/jacoelho/dq/internal/celop"
	"github.com/jacoelho/dq/internal/document"
	"github.com/jacoelho/dq/internal/dotpath"
	"github.com/jacoelho/dq/internal/exit"
)

// CLI is the dq command tree.
type CLI struct {
	InputFormat string `help:"Input format: auto, json, jsonl (alias ndjson) or yaml (alias yml)." short:"f" enum:"auto,json,jsonl,yaml,yml,ndjson" default:"auto"`
	Output      string `help:"Output format (json, yaml)." short:"o" enum:"json,yaml" default:"json"`
	Debug       bool   `help:"Log debug information to stderr."`
	NoColor     bool   `help:"Disable coloured output."`

	Get    GetCmd    `cmd:"" help:"Print the first value selected by a path."`
	Find   FindCmd   `cmd:"" help:"Print every value selected by a path."`
	Exists ExistsCmd `cmd:"" help:"Report whether a path selects anything."`
	Query  QueryCmd  `cmd:"" help:"Print the documents matching a query."`
	Test   TestCmd   `cmd:"" help:"Evaluate a query, exiting 0 when it holds."`
	Set    SetCmd    `cmd:"" help:"Replace every value selected by a path in a JSON document."`
	Ast    AstCmd    `cmd:"" help:"Print the syntax tree of a path or query as JSON."`
}

// Context is shared by every command.
type Context struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Format   document.Format
	Output   string
	NoColor  bool
	Registry *dotpath.Registry
}

// Evaluator returns an evaluator over the command registry.
func (c *Context) Evaluator() *dotpath.Evaluator {
	return dotpath.NewEvaluator(c.Registry)
}

func (c *Context) colored(attr color.Attribute) *color.Color {
	col := color.New(attr)
	if c.NoColor {
		col.DisableColor()
	}
	return col
}

type exitRequest struct{ code int }

// Run parses args, runs the selected command and returns the process exit
// code. Cancelling ctx interrupts document loading.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("dq"),
		kong.Description("Address and query nested JSON and YAML documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(status int) { panic(exitRequest{code: status}) }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exit.CodeUsage
	}

	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = req.code
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "dq: %v\n", err)
		return exit.CodeUsage
	}

	appCtx, err := cli.context(ctx, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "dq: %v\n", err)
		return exit.CodeUsage
	}

	err = kctx.Run(appCtx)
	if err == nil {
		return exit.CodeOK
	}

	res := classify(err)
	res.Output = stderr
	if res.Message != "" {
		res.Message = appCtx.colored(color.FgRed).Sprint("dq: " + res.Message)
	}
	res.Print()
	appCtx.Logger.Debug("command failed", "command", kctx.Command(), "exit", res.ExitCode, "error", err)
	return res.ExitCode
}

func (c *CLI) context(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	format := document.Format("")
	if c.InputFormat != "auto" {
		var err error
		if format, err = document.ParseFormat(c.InputFormat); err != nil {
			return nil, err
		}
	}

	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	reg := dotpath.NewRegistry()
	if _, err := celop.Register(reg); err != nil {
		return nil, err
	}

	return &Context{
		Ctx:      ctx,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		Logger:   logger,
		Format:   format,
		Output:   c.Output,
		NoColor:  c.NoColor,
		Registry: reg,
	}, nil
}

// classify maps a command error onto an exit result.
func classify(err error) *exit.Result {
	var res *exit.Result
	if errors.As(err, &res) {
		return res
	}

	switch {
	case errors.Is(err, dotpath.ErrParse),
		errors.Is(err, dotpath.ErrDSL),
		errors.Is(err, dotpath.ErrUnknownOperator),
		errors.Is(err, dotpath.ErrUnknownSegmentKind),
		errors.Is(err, dotpath.ErrInvalidNode),
		errors.Is(err, document.ErrUnknownFormat):
		return exit.Usagef("%v", err)
	default:
		return exit.IOf("%v", err)
	}
}
