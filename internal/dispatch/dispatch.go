// Package dispatch invokes the plugin constructor and method selected by a
// parsed invocation.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/example/plugincli/internal/introspect"
	"github.com/example/plugincli/internal/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrUnknownCommand is returned for invocations naming a command or
// subcommand the schema does not have.
var ErrUnknownCommand = errors.New("unknown command")

// Run constructs the selected plugin and, when a subcommand is selected,
// calls it. Without a subcommand the constructed value is the result.
// Errors returned by the plugin are passed through unchanged.
func Run(ctx context.Context, s *schema.Schema, inv *schema.Invocation) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd, ok := s.Command(inv.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, inv.Command)
	}
	var sub *schema.Subcommand
	if inv.Subcommand != "" {
		if sub, ok = cmd.Subcommand(inv.Subcommand); !ok {
			return nil, fmt.Errorf("%w: %q has no subcommand %q", ErrUnknownCommand, inv.Command, inv.Subcommand)
		}
	}

	args := make(map[string]any, len(inv.Args))
	for name, value := range inv.Args {
		if !strings.HasPrefix(name, schema.ReservedPrefix) {
			args[name] = value
		}
	}

	logger := log.With().
		Str("run_id", uuid.NewString()).
		Str("command", cmd.Name).
		Str("subcommand", inv.Subcommand).
		Logger()
	logger.Debug().Msg("Dispatching")

	instance, err := construct(ctx, cmd, args)
	if err != nil {
		logger.Debug().Err(err).Msg("Constructor failed")
		return nil, err
	}
	if sub == nil {
		return instance.Interface(), nil
	}

	result, err := call(ctx, instance, sub, args)
	if err != nil {
		logger.Debug().Err(err).Msg("Subcommand failed")
		return nil, err
	}
	logger.Debug().Msg("Dispatch complete")
	return result, nil
}

// construct calls the constructor and returns a pointer to the built
// value, so that pointer-receiver methods are callable.
func construct(ctx context.Context, cmd *schema.Command, args map[string]any) (reflect.Value, error) {
	in, err := inputs(ctx, cmd.Signature, cmd.Params, args)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("command %s: %w", cmd.Name, err)
	}

	out := cmd.Constructor.Call(in)
	if cmd.Signature.Error {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return reflect.Value{}, err
		}
	}

	instance := out[0]
	if instance.Kind() != reflect.Pointer {
		ptr := reflect.New(instance.Type())
		ptr.Elem().Set(instance)
		instance = ptr
	}
	if instance.IsNil() {
		return reflect.Value{}, fmt.Errorf("command %s: constructor returned nil", cmd.Name)
	}
	return instance, nil
}

func call(ctx context.Context, instance reflect.Value, sub *schema.Subcommand, args map[string]any) (any, error) {
	method := instance.MethodByName(sub.Method)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: method %s", ErrUnknownCommand, sub.Method)
	}
	in, err := inputs(ctx, sub.Signature, sub.Params, args)
	if err != nil {
		return nil, fmt.Errorf("subcommand %s: %w", sub.Name, err)
	}

	out := method.Call(in)
	if sub.Signature.Error {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return nil, err
		}
	}
	if sub.Signature.Result {
		return out[0].Interface(), nil
	}
	return nil, nil
}

func inputs(ctx context.Context, sig *introspect.Signature, params []introspect.Param, args map[string]any) ([]reflect.Value, error) {
	var in []reflect.Value
	if sig.Context {
		in = append(in, reflect.ValueOf(ctx))
	}
	if sig.Args != nil {
		bound, err := bind(sig.Args, params, args)
		if err != nil {
			return nil, err
		}
		in = append(in, bound)
	}
	return in, nil
}
