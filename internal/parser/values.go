package parser

import (
	"fmt"
	"strconv"

	"github.com/example/plugincli/pkg/plugin"
	"github.com/spf13/pflag"
)

const (
	helpUsage    = "show this help message and exit"
	versionUsage = "show program's version number and exit"
)

// addFlags declares the optional parameters on fs. Defaults have already
// been validated against the parameter type.
func addFlags(fs *pflag.FlagSet, specs []plugin.ParameterSpec) {
	for _, spec := range specs {
		if spec.Required {
			continue
		}
		form := spec.FlagForm()
		switch spec.Type {
		case plugin.TypeBoolean:
			fs.BoolP(form.Long, form.Short, false, spec.Help)
		case plugin.TypeInteger:
			fs.IntP(form.Long, form.Short, spec.Default.(int), spec.Help)
		default:
			fs.StringP(form.Long, form.Short, spec.Default.(string), spec.Help)
		}
	}
}

func required(specs []plugin.ParameterSpec) []plugin.ParameterSpec {
	var out []plugin.ParameterSpec
	for _, spec := range specs {
		if spec.Required {
			out = append(out, spec)
		}
	}
	return out
}

func names(specs []plugin.ParameterSpec) []string {
	out := make([]string, len(specs))
	for i, spec := range specs {
		out[i] = spec.FlagForm().Positional
	}
	return out
}

// collect resolves every parameter: positionals in declaration order,
// optional parameters from fs. The positional count must match exactly.
func collect(specs []plugin.ParameterSpec, fs *pflag.FlagSet, tokens []string) (map[string]any, error) {
	positionals := make([]string, len(tokens))
	for i, token := range tokens {
		positionals[i] = unmark(token)
	}

	req := required(specs)
	if len(positionals) < len(req) {
		return nil, missingArguments(names(req[len(positionals):])...)
	}
	if len(positionals) > len(req) {
		return nil, unrecognizedArguments(positionals[len(req):])
	}

	values := make(map[string]any, len(specs))
	for i, spec := range req {
		value, err := coerce(spec, positionals[i])
		if err != nil {
			return nil, err
		}
		values[spec.Name] = value
	}
	if err := readFlags(values, specs, fs); err != nil {
		return nil, err
	}
	return values, nil
}

func readFlags(values map[string]any, specs []plugin.ParameterSpec, fs *pflag.FlagSet) error {
	for _, spec := range specs {
		if spec.Required {
			continue
		}
		long := spec.FlagForm().Long

		var value any
		var err error
		switch spec.Type {
		case plugin.TypeBoolean:
			value, err = fs.GetBool(long)
		case plugin.TypeInteger:
			value, err = fs.GetInt(long)
		default:
			value, err = fs.GetString(long)
		}
		if err != nil {
			return fmt.Errorf("reading --%s: %w", long, err)
		}
		values[spec.Name] = value
	}
	return nil
}

func coerce(spec plugin.ParameterSpec, raw string) (any, error) {
	if spec.Type != plugin.TypeInteger {
		return raw, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("argument %s: invalid integer value: '%s'", spec.FlagForm().Positional, raw)
	}
	return n, nil
}
