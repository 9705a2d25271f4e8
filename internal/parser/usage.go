package parser

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/plugincli/internal/schema"
	"github.com/example/plugincli/pkg/plugin"
	"github.com/spf13/cobra"
)

// Placeholders used for the levels a usage line does not name
const (
	CommandPlaceholder    = "<command>"
	SubcommandPlaceholder = "[subcommand]"
	OptionsPlaceholder    = "[args]"
)

// BuildUsage joins the six usage segments in order:
//
//	{prog}{global_opts}{command}{command_opts}{subcommand}{subcommand_opts}
//
// Every non-empty segment is followed by exactly one space.
func BuildUsage(prog, globalOpts, command, commandOpts, subcommand, subcommandOpts string) string {
	var b strings.Builder
	for _, segment := range []string{prog, globalOpts, command, commandOpts, subcommand, subcommandOpts} {
		if segment == "" {
			continue
		}
		b.WriteString(segment)
		if !strings.HasSuffix(segment, " ") {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Synopsis renders a parameter list for a usage line, optional
// parameters first and positionals after them in declaration order.
func Synopsis(specs []plugin.ParameterSpec) string {
	var optional, positional []string
	for _, spec := range specs {
		if spec.Required {
			positional = append(positional, spec.Synopsis())
		} else {
			optional = append(optional, spec.Synopsis())
		}
	}
	return strings.Join(append(optional, positional...), " ")
}

// Usage returns the usage line for the root (command == ""), a command,
// or one of its subcommands. Levels below the requested one keep their
// placeholders; a command without subcommands has no subcommand segments.
func (p *Parser) Usage(command, subcommand string) string {
	globalOpts := Synopsis(p.schema.Globals)
	if command == "" {
		return BuildUsage(p.config.Prog, globalOpts, CommandPlaceholder, OptionsPlaceholder, SubcommandPlaceholder, OptionsPlaceholder)
	}

	cmd, ok := p.schema.Command(command)
	if !ok {
		return BuildUsage(p.config.Prog, globalOpts, command, OptionsPlaceholder, SubcommandPlaceholder, OptionsPlaceholder)
	}
	commandOpts := Synopsis(schema.Specs(cmd.Params))
	if len(cmd.Subcommands) == 0 {
		return BuildUsage(p.config.Prog, globalOpts, cmd.Name, commandOpts, "", "")
	}
	if subcommand == "" {
		return BuildUsage(p.config.Prog, globalOpts, cmd.Name, commandOpts, SubcommandPlaceholder, OptionsPlaceholder)
	}

	subcommandOpts := OptionsPlaceholder
	if sub, ok := cmd.Subcommand(subcommand); ok {
		subcommandOpts = Synopsis(schema.Specs(sub.Params))
	}
	return BuildUsage(p.config.Prog, globalOpts, cmd.Name, commandOpts, subcommand, subcommandOpts)
}

type choice struct {
	name    string
	summary string
}

func (c choice) String() string {
	if c.summary == "" {
		return c.name
	}
	return c.name + " - " + c.summary
}

func commandChoices(s *schema.Schema) []choice {
	choices := make([]choice, len(s.Commands))
	for i, cmd := range s.Commands {
		choices[i] = choice{name: cmd.Name, summary: cmd.Summary}
	}
	return choices
}

func subcommandChoices(cmd *schema.Command) []choice {
	choices := make([]choice, len(cmd.Subcommands))
	for i, sub := range cmd.Subcommands {
		choices[i] = choice{name: sub.Name, summary: sub.Summary}
	}
	return choices
}

func choiceNames(choices []choice) []string {
	names := make([]string, len(choices))
	for i, c := range choices {
		names[i] = c.name
	}
	return names
}

// helpPage is everything printed by -h at one level
type helpPage struct {
	usage       string
	description string
	positionals []plugin.ParameterSpec
	command     *cobra.Command
	title       string
	choices     []choice
}

func (h helpPage) write(w io.Writer) {
	fmt.Fprintf(w, "usage: %s\n", strings.TrimSpace(h.usage))

	if h.description != "" {
		fmt.Fprintf(w, "\n%s\n", h.description)
	}

	var positionals []plugin.ParameterSpec
	for _, spec := range h.positionals {
		if spec.Required {
			positionals = append(positionals, spec)
		}
	}
	if len(positionals) > 0 {
		fmt.Fprintf(w, "\npositional arguments:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, spec := range positionals {
			fmt.Fprintf(tw, "  %s\t%s\n", spec.FlagForm().Positional, spec.Help)
		}
		tw.Flush()
	}

	if local := h.command.LocalFlags(); local.HasAvailableFlags() {
		fmt.Fprintf(w, "\noptions:\n%s", local.FlagUsages())
	}
	if inherited := h.command.InheritedFlags(); inherited.HasAvailableFlags() {
		fmt.Fprintf(w, "\nglobal options:\n%s", inherited.FlagUsages())
	}

	if len(h.choices) > 0 {
		fmt.Fprintf(w, "\n%s:\n", h.title)
		for _, c := range h.choices {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
}
