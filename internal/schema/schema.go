// Package schema combines plugin introspection into the immutable tree the
// parser and the dispatcher work from: global options, commands with their
// constructor options, and subcommands with their own options.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/example/plugincli/internal/introspect"
	"github.com/example/plugincli/pkg/plugin"
	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog/log"
)

// Reserved keys of an Invocation's argument map
const (
	CommandKey    = "_command"
	SubcommandKey = "_subcommand"
	// ReservedPrefix marks keys that belong to the CLI rather than to a
	// plugin parameter.
	ReservedPrefix = "_"
)

// ErrCollision is returned when two names or flags would shadow each other
// at the same parse level.
var ErrCollision = errors.New("name collision")

// reservedNames cannot be used as command or subcommand names
var reservedNames = map[string]bool{"help": true}

// Schema is the complete argument tree. It is not modified after Build.
type Schema struct {
	Globals  []plugin.ParameterSpec
	Commands []*Command
}

// Command is a plugin type exposed as a command
type Command struct {
	Name    string
	Summary string
	// Constructor is the registered constructor function
	Constructor reflect.Value
	Signature   *introspect.Signature
	Params      []introspect.Param
	Subcommands []*Subcommand
}

// Subcommand is an exported method of a plugin type
type Subcommand struct {
	Name string
	// Method is the Go method name, used for dispatch
	Method    string
	Summary   string
	Signature *introspect.Signature
	Params    []introspect.Param
}

// Invocation is the outcome of parsing an argument vector
type Invocation struct {
	Command    string
	Subcommand string
	// Args maps parameter names to parsed values. The selections are
	// recorded under CommandKey and SubcommandKey, and global options
	// under their own names.
	Args map[string]any
}

// Command returns the command with the given name
func (s *Schema) Command(name string) (*Command, bool) {
	for _, cmd := range s.Commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return nil, false
}

// Subcommand returns the subcommand with the given name
func (c *Command) Subcommand(name string) (*Subcommand, bool) {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub, true
		}
	}
	return nil, false
}

// Specs returns the bare parameter specs of params
func Specs(params []introspect.Param) []plugin.ParameterSpec {
	specs := make([]plugin.ParameterSpec, len(params))
	for i, p := range params {
		specs[i] = p.ParameterSpec
	}
	return specs
}

// Build introspects every constructor in ns and validates the resulting
// tree. All problems are reported together.
func Build(ns *plugin.Namespace, globals []plugin.ParameterSpec) (*Schema, error) {
	s := &Schema{Globals: append([]plugin.ParameterSpec(nil), globals...)}

	var errs []error
	for _, global := range s.Globals {
		if err := global.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("global %s: %w", global.Name, err))
			continue
		}
		if global.Required {
			errs = append(errs, fmt.Errorf("global %s: global parameters must be optional", global.Name))
		}
	}

	seen := make(map[string]bool)
	for _, constructor := range ns.Constructors() {
		cmd, err := buildCommand(constructor)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[cmd.Name] {
			errs = append(errs, fmt.Errorf("%w: command %q is registered twice", ErrCollision, cmd.Name))
			continue
		}
		seen[cmd.Name] = true
		s.Commands = append(s.Commands, cmd)

		log.Debug().
			Str("namespace", ns.Name()).
			Str("command", cmd.Name).
			Int("params", len(cmd.Params)).
			Int("subcommands", len(cmd.Subcommands)).
			Msg("Registered command")
	}
	sort.Slice(s.Commands, func(i, j int) bool { return s.Commands[i].Name < s.Commands[j].Name })

	if err := s.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func buildCommand(constructor any) (*Command, error) {
	fn := reflect.ValueOf(constructor)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: constructor %T is not a function", introspect.ErrUnsupportedSignature, constructor)
	}

	built, err := introspect.Constructed(fn.Type())
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(introspect.TypeName(built))

	sig, err := introspect.Analyze(fn.Type(), false)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}
	params, err := introspect.Describe(sig.Args, introspect.DocOf(built, plugin.ConstructorDoc))
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}

	cmd := &Command{
		Name:        name,
		Summary:     introspect.Summary(introspect.DocOf(built, "")),
		Constructor: fn,
		Signature:   sig,
		Params:      params,
	}

	for _, method := range introspect.Methods(built) {
		sub, err := buildSubcommand(built, method)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", name, err)
		}
		cmd.Subcommands = append(cmd.Subcommands, sub)
	}
	return cmd, nil
}

func buildSubcommand(built reflect.Type, method reflect.Method) (*Subcommand, error) {
	name := strcase.ToKebab(method.Name)

	sig, err := introspect.Analyze(method.Type, true)
	if err != nil {
		return nil, fmt.Errorf("subcommand %s: %w", name, err)
	}
	doc := introspect.DocOf(built, method.Name)
	params, err := introspect.Describe(sig.Args, doc)
	if err != nil {
		return nil, fmt.Errorf("subcommand %s: %w", name, err)
	}

	return &Subcommand{
		Name:      name,
		Method:    method.Name,
		Summary:   introspect.Summary(doc),
		Signature: sig,
		Params:    params,
	}, nil
}
