package parser

import (
	"regexp"
	"strings"

	"github.com/example/plugincli/internal/schema"
	"github.com/example/plugincli/pkg/plugin"
)

// negativeMarker is prepended to negative numbers that are positional
// values. pflag reads every token with a leading '-' as a flag; the marker
// hides the sign until collect strips it.
const negativeMarker = "\x00"

var negativeNumber = regexp.MustCompile(`^-[0-9]+$`)

func unmark(token string) string {
	return strings.TrimPrefix(token, negativeMarker)
}

// flagShape records which flags of one parse level take a value
type flagShape struct {
	shorts map[byte]bool
	longs  map[string]bool
}

func newFlagShape(groups ...[]plugin.ParameterSpec) flagShape {
	shape := flagShape{
		shorts: map[byte]bool{schema.HelpFlag.Short[0]: false},
		longs:  map[string]bool{schema.HelpFlag.Long: false},
	}
	for _, specs := range groups {
		for _, spec := range specs {
			if spec.Required {
				continue
			}
			form := spec.FlagForm()
			takesValue := spec.Type != plugin.TypeBoolean
			shape.shorts[form.Short[0]] = takesValue
			shape.longs[form.Long] = takesValue
		}
	}
	return shape
}

// numericShorthand reports whether a digit is declared as a short flag.
// Negative numbers are flags at such a level.
func (s flagShape) numericShorthand() bool {
	for short := range s.shorts {
		if short >= '0' && short <= '9' {
			return true
		}
	}
	return false
}

// consumesNext reports whether the flag token takes the following token
// as its value, the way pflag decides it.
func (s flagShape) consumesNext(token string) bool {
	if strings.HasPrefix(token, "--") {
		name := token[2:]
		if strings.Contains(name, "=") {
			return false
		}
		return s.longs[name]
	}
	for i := 1; i < len(token); i++ {
		takesValue, ok := s.shorts[token[i]]
		if !ok {
			return false
		}
		if takesValue {
			return i == len(token)-1
		}
	}
	return false
}

// markNegatives walks argv along the grammar and marks the negative
// numbers that stand for positional values. Flag values and the tokens of
// unknown commands are left alone.
func (p *Parser) markNegatives(argv []string) []string {
	out := append([]string(nil), argv...)

	var version []plugin.ParameterSpec
	if p.config.Version != "" {
		version = append(version, plugin.Optional(versionFlag.Long, plugin.TypeBoolean, versionUsage))
	}
	shape := newFlagShape(p.schema.Globals, version)

	var cmd *schema.Command
	var sub *schema.Subcommand
	positionals := 0
	for i := 0; i < len(out); i++ {
		token := out[i]
		if token == "--" {
			break
		}
		if cmd != nil && negativeNumber.MatchString(token) && !shape.numericShorthand() {
			token = negativeMarker + token
			out[i] = token
		}
		if len(token) > 1 && token[0] == '-' {
			if shape.consumesNext(token) {
				i++
			}
			continue
		}

		switch {
		case cmd == nil:
			found, ok := p.schema.Command(token)
			if !ok {
				return out
			}
			cmd = found
			shape = newFlagShape(p.schema.Globals, schema.Specs(cmd.Params))
		case sub == nil && len(cmd.Subcommands) > 0:
			if positionals < len(required(schema.Specs(cmd.Params))) {
				positionals++
				continue
			}
			found, ok := cmd.Subcommand(unmark(token))
			if !ok {
				return out
			}
			sub = found
			shape = newFlagShape(schema.Specs(sub.Params))
		}
	}
	return out
}
