// Package cli builds a command line interface from a plugin namespace.
//
// Every constructor registered in the namespace becomes a command named
// after the lower-cased type it builds, and every exported method of that
// type becomes a subcommand. Constructor options and method arguments are
// described by struct fields, so no per-command parsing code is written:
//
//	ns := plugin.NewNamespace("tools").Register(NewBuilder)
//	core, err := cli.New(cli.Options{Prog: "tools", Namespace: ns})
//	if err != nil {
//		return err // malformed plugin, fail at startup
//	}
//	result, err := core.Execute(ctx, os.Args[1:])
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/example/plugincli/internal/dispatch"
	"github.com/example/plugincli/internal/introspect"
	"github.com/example/plugincli/internal/parser"
	"github.com/example/plugincli/internal/schema"
	"github.com/example/plugincli/pkg/plugin"
)

type (
	// Invocation is a parsed command line
	Invocation = schema.Invocation
	// Schema is the argument tree built from a namespace
	Schema = schema.Schema
	// UsageError reports a command line that does not match the grammar
	UsageError = parser.UsageError
)

var (
	// ErrShown is returned after help or the version was printed
	ErrShown = parser.ErrShown
	// ErrUnknownCommand is returned by Run for names the schema lacks
	ErrUnknownCommand = dispatch.ErrUnknownCommand
	// ErrUnsupportedSignature is returned by New for plugins whose
	// constructor or methods cannot be described
	ErrUnsupportedSignature = introspect.ErrUnsupportedSignature
	// ErrCollision is returned by New when names or flags shadow each other
	ErrCollision = schema.ErrCollision
)

// Options configures a Core
type Options struct {
	Prog        string
	Namespace   *plugin.Namespace
	Description string
	Version     string
	// Globals are optional parameters accepted before the command name
	Globals []plugin.ParameterSpec
	Stdout  io.Writer
	Stderr  io.Writer
}

// Core ties the schema, parser and dispatcher together
type Core struct {
	schema *schema.Schema
	parser *parser.Parser
}

// New builds the schema and the parser. Any malformed plugin is reported
// here.
func New(opts Options) (*Core, error) {
	if opts.Namespace == nil {
		return nil, errors.New("namespace is required")
	}
	s, err := schema.Build(opts.Namespace, opts.Globals)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", opts.Prog, err)
	}
	p, err := parser.New(s, parser.Config{
		Prog:        opts.Prog,
		Description: opts.Description,
		Version:     opts.Version,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", opts.Prog, err)
	}
	return &Core{schema: s, parser: p}, nil
}

// Parse parses argv, or the process arguments when argv is nil
func (c *Core) Parse(argv []string) (*Invocation, error) {
	if argv == nil {
		argv = os.Args[1:]
	}
	return c.parser.Parse(argv)
}

// Run dispatches a parsed invocation. Plugin errors are returned as is.
func (c *Core) Run(ctx context.Context, inv *Invocation) (any, error) {
	return dispatch.Run(ctx, c.schema, inv)
}

// Execute parses argv and runs the result
func (c *Core) Execute(ctx context.Context, argv []string) (any, error) {
	inv, err := c.Parse(argv)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, inv)
}

// Schema returns the argument tree
func (c *Core) Schema() *Schema {
	return c.schema
}

// Usage returns the usage line of the root, a command or a subcommand
func (c *Core) Usage(command, subcommand string) string {
	return c.parser.Usage(command, subcommand)
}

// Help writes the help page of the root, a command or a subcommand
func (c *Core) Help(w io.Writer, command, subcommand string) error {
	return c.parser.Help(w, command, subcommand)
}

// ExitCode maps an error from Execute to a process status: 0 for success
// and shown help, the error's own ExitCode when it has one, 1 otherwise.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrShown) {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return 1
}
