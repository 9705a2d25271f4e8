package plugin

import (
	"fmt"
	"strings"
)

// FlagForm is the command-line surface of a parameter
type FlagForm struct {
	// Positional is set for required parameters and is the token shown
	// in usage lines.
	Positional string
	Short      string
	Long       string
}

// FlagForm returns the synthesized flag surface. Required parameters
// become positional tokens; optional ones get a short flag built from
// the first character and a long flag with underscores turned into
// hyphens. Leading underscores never reach the flag names.
func (p *ParameterSpec) FlagForm() FlagForm {
	if p.Required {
		return FlagForm{Positional: strings.ToLower(p.Name)}
	}
	name := strings.TrimLeft(p.Name, "_")
	if name == "" {
		return FlagForm{}
	}
	return FlagForm{
		Short: name[:1],
		Long:  strings.ReplaceAll(name, "_", "-"),
	}
}

// Metavar is the placeholder shown after a value-taking flag
func (p *ParameterSpec) Metavar() string {
	return strings.ToUpper(strings.TrimLeft(p.Name, "_"))
}

// Synopsis renders the parameter the way usage lines show it:
// "name", "[-x|--x-name X_NAME]" or "[-x|--x-name]" for booleans.
func (p *ParameterSpec) Synopsis() string {
	form := p.FlagForm()
	if p.Required {
		return form.Positional
	}
	if p.Type == TypeBoolean {
		return fmt.Sprintf("[-%s|--%s]", form.Short, form.Long)
	}
	return fmt.Sprintf("[-%s|--%s %s]", form.Short, form.Long, p.Metavar())
}

// Validate checks that the name, type and default agree
func (p *ParameterSpec) Validate() error {
	if strings.TrimLeft(p.Name, "_") == "" {
		return fmt.Errorf("parameter name is required")
	}

	switch p.Type {
	case TypeText, TypeInteger, TypeBoolean:
	default:
		return fmt.Errorf("unsupported parameter type: %s", p.Type)
	}

	if p.Required {
		if p.Default != nil {
			return fmt.Errorf("required parameter %s cannot have a default", p.Name)
		}
		if p.Type == TypeBoolean {
			return fmt.Errorf("boolean parameter %s must be optional", p.Name)
		}
		return nil
	}

	switch p.Type {
	case TypeText:
		if _, ok := p.Default.(string); !ok {
			return fmt.Errorf("default for %s must be a string, got %T", p.Name, p.Default)
		}
	case TypeInteger:
		if _, ok := p.Default.(int); !ok {
			return fmt.Errorf("default for %s must be an int, got %T", p.Name, p.Default)
		}
	case TypeBoolean:
		value, ok := p.Default.(bool)
		if !ok {
			return fmt.Errorf("default for %s must be a bool, got %T", p.Name, p.Default)
		}
		if value {
			return fmt.Errorf("boolean parameter %s can only default to false", p.Name)
		}
	}

	return nil
}

// Optional returns an optional parameter spec with the zero default of
// its type. It is the usual way for a host program to declare globals.
func Optional(name string, typ ParamType, help string) ParameterSpec {
	var def any
	switch typ {
	case TypeInteger:
		def = 0
	case TypeBoolean:
		def = false
	default:
		def = ""
	}
	return ParameterSpec{Name: name, Type: typ, Default: def, Help: help}
}
