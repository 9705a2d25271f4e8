package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/plugincli/internal/introspect"
	"github.com/example/plugincli/pkg/plugin"
)

// HelpFlag is the flag every parse level reserves for help
var HelpFlag = plugin.FlagForm{Short: "h", Long: "help"}

// Level tracks the flags declared at one parse level
type Level struct {
	where  string
	shorts map[string]string
	longs  map[string]string
}

// NewLevel creates a level with the given flags already taken
func NewLevel(where string, reserved ...plugin.FlagForm) *Level {
	l := &Level{
		where:  where,
		shorts: make(map[string]string),
		longs:  make(map[string]string),
	}
	for _, form := range reserved {
		l.shorts[form.Short] = "--" + form.Long
		l.longs[form.Long] = "--" + form.Long
	}
	return l
}

// Add declares the flags of an optional parameter. Required parameters
// are positional and never collide with flags.
func (l *Level) Add(spec plugin.ParameterSpec) error {
	if spec.Required {
		return nil
	}
	form := spec.FlagForm()
	if owner, ok := l.shorts[form.Short]; ok {
		return fmt.Errorf("%w: %s: -%s of %s is already used by %s", ErrCollision, l.where, form.Short, spec.Name, owner)
	}
	if owner, ok := l.longs[form.Long]; ok {
		return fmt.Errorf("%w: %s: --%s of %s is already used by %s", ErrCollision, l.where, form.Long, spec.Name, owner)
	}
	l.shorts[form.Short] = spec.Name
	l.longs[form.Long] = spec.Name
	return nil
}

func (s *Schema) validate() error {
	var errs []error

	root := NewLevel("global options", HelpFlag)
	globalKeys := make(map[string]bool)
	for _, global := range s.Globals {
		if err := root.Add(global); err != nil {
			errs = append(errs, err)
		}
		globalKeys[global.Name] = true
	}

	for _, cmd := range s.Commands {
		if reservedNames[cmd.Name] {
			errs = append(errs, fmt.Errorf("%w: command name %q is reserved", ErrCollision, cmd.Name))
		}

		// Globals are inherited by every command.
		level := NewLevel("command "+cmd.Name, HelpFlag)
		for _, global := range s.Globals {
			_ = level.Add(global)
		}
		if err := checkParams(level, cmd.Params, globalKeys); err != nil {
			errs = append(errs, err)
		}

		ctorKeys := make(map[string]bool, len(cmd.Params))
		for _, p := range cmd.Params {
			ctorKeys[p.Name] = true
		}

		subNames := make(map[string]bool, len(cmd.Subcommands))
		for _, sub := range cmd.Subcommands {
			where := "subcommand " + cmd.Name + " " + sub.Name
			if reservedNames[sub.Name] {
				errs = append(errs, fmt.Errorf("%w: %s: name is reserved", ErrCollision, where))
			}
			if subNames[sub.Name] {
				errs = append(errs, fmt.Errorf("%w: %s: declared twice", ErrCollision, where))
			}
			subNames[sub.Name] = true

			for _, p := range sub.Params {
				if ctorKeys[p.Name] {
					errs = append(errs, fmt.Errorf("%w: %s: parameter %q is also a constructor parameter", ErrCollision, where, p.Name))
				}
			}
			if err := checkParams(NewLevel(where, HelpFlag), sub.Params, globalKeys); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func checkParams(level *Level, params []introspect.Param, globalKeys map[string]bool) error {
	var errs []error
	for _, p := range params {
		if strings.HasPrefix(p.Name, ReservedPrefix) {
			errs = append(errs, fmt.Errorf("%w: %s: parameter %q uses the reserved prefix %q", ErrCollision, level.where, p.Name, ReservedPrefix))
			continue
		}
		if globalKeys[p.Name] {
			errs = append(errs, fmt.Errorf("%w: %s: parameter %q is also a global option", ErrCollision, level.where, p.Name))
			continue
		}
		if err := level.Add(p.ParameterSpec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
