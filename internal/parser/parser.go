// Package parser turns a schema into a three-level command line grammar
// on top of cobra: global options, a command with its constructor options
// and, for commands that have them, a subcommand with its own options.
package parser

import (
	"errors"
	"io"
	"os"

	"github.com/example/plugincli/internal/schema"
	"github.com/example/plugincli/pkg/plugin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var versionFlag = plugin.FlagForm{Short: "v", Long: "version"}

// Config holds the program-level settings of a parser
type Config struct {
	Prog        string
	Description string
	// Version adds -v/--version to the global options when set
	Version string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Parser parses argument vectors against a schema
type Parser struct {
	schema *schema.Schema
	config Config
}

// New creates a parser. The only check left at this point is the version
// flag against the global options; the schema validated everything else.
func New(s *schema.Schema, config Config) (*Parser, error) {
	if config.Prog == "" {
		return nil, errors.New("program name is required")
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}
	if config.Version != "" {
		level := schema.NewLevel("global options", schema.HelpFlag, versionFlag)
		for _, global := range s.Globals {
			if err := level.Add(global); err != nil {
				return nil, err
			}
		}
	}
	return &Parser{schema: s, config: config}, nil
}

// Parse parses argv. It returns ErrShown when help or the version was
// printed and a *UsageError when argv does not match the grammar.
func (p *Parser) Parse(argv []string) (*schema.Invocation, error) {
	if argv == nil {
		argv = []string{}
	}

	r := p.newRun()
	r.root.SetArgs(p.markNegatives(argv))
	if err := r.root.Execute(); err != nil {
		return nil, p.usageError(p.Usage("", ""), err)
	}
	if r.invocation == nil {
		return nil, ErrShown
	}

	log.Debug().
		Str("command", r.invocation.Command).
		Str("subcommand", r.invocation.Subcommand).
		Int("args", len(r.invocation.Args)).
		Msg("Parsed invocation")
	return r.invocation, nil
}

// Help writes the help page of the root, a command or a subcommand to w
func (p *Parser) Help(w io.Writer, command, subcommand string) error {
	r := p.newRun()
	var args []string
	if command != "" {
		args = append(args, command)
	}
	if subcommand != "" {
		args = append(args, subcommand)
	}
	return r.help(w, args)
}

// run is the state of a single Parse call. The cobra tree is rebuilt
// every time so flag values never leak between calls.
type run struct {
	p          *Parser
	root       *cobra.Command
	commands   map[string]*cobra.Command
	invocation *schema.Invocation
}

func (p *Parser) newRun() *run {
	r := &run{p: p, commands: make(map[string]*cobra.Command)}
	r.root = r.rootCommand()
	return r
}

func (r *run) rootCommand() *cobra.Command {
	p := r.p
	usage := p.Usage("", "")
	choices := commandChoices(p.schema)

	root := &cobra.Command{
		Use:               p.config.Prog,
		Long:              p.config.Description,
		Version:           p.config.Version,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return p.usageError(usage, missingArguments("command"))
			}
			return p.usageError(usage, invalidChoice("command", args[0], choiceNames(choices)))
		},
	}
	root.SetOut(p.config.Stdout)
	root.SetErr(p.config.Stderr)
	root.SetVersionTemplate("{{.Version}}\n")

	root.Flags().BoolP(schema.HelpFlag.Long, schema.HelpFlag.Short, false, helpUsage)
	if p.config.Version != "" {
		root.Flags().BoolP(versionFlag.Long, versionFlag.Short, false, versionUsage)
	}
	addFlags(root.PersistentFlags(), p.schema.Globals)

	root.SetFlagErrorFunc(r.flagError(usage))
	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		helpPage{
			usage:       usage,
			description: p.config.Description,
			command:     c,
			title:       "commands",
			choices:     choices,
		}.write(c.OutOrStdout())
	})
	root.SetHelpCommand(&cobra.Command{
		Use:   "help [command] [subcommand]",
		Short: "Show help for a command",
		Args:  cobra.ArbitraryArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return r.help(c.OutOrStdout(), args)
		},
	})

	for _, cmd := range p.schema.Commands {
		child := r.command(cmd)
		r.commands[cmd.Name] = child
		root.AddCommand(child)
	}
	return root
}

// command builds the cobra command for one plugin type. Commands without
// subcommands are leaves. Commands with subcommands stop flag parsing at
// the first positional so constructor positionals and the subcommand
// name can be told apart.
func (r *run) command(cmd *schema.Command) *cobra.Command {
	usage := r.p.Usage(cmd.Name, "")
	specs := schema.Specs(cmd.Params)

	c := &cobra.Command{
		Use:   cmd.Name,
		Short: cmd.Summary,
		Args:  cobra.ArbitraryArgs,
	}
	c.Flags().BoolP(schema.HelpFlag.Long, schema.HelpFlag.Short, false, helpUsage)
	addFlags(c.Flags(), specs)
	c.SetFlagErrorFunc(r.flagError(usage))

	page := helpPage{
		usage:       usage,
		description: cmd.Summary,
		positionals: specs,
		command:     c,
		title:       "subcommands",
		choices:     subcommandChoices(cmd),
	}
	c.SetHelpFunc(func(c *cobra.Command, _ []string) {
		page.write(c.OutOrStdout())
	})

	if len(cmd.Subcommands) == 0 {
		c.RunE = func(c *cobra.Command, args []string) error {
			values, err := collect(specs, c.Flags(), args)
			if err != nil {
				return r.p.usageError(usage, err)
			}
			return r.record(cmd, nil, values)
		}
		return c
	}

	c.Flags().SetInterspersed(false)
	c.RunE = func(c *cobra.Command, args []string) error {
		return r.selectSubcommand(c, cmd, args)
	}
	return c
}

// selectSubcommand consumes the constructor positionals one at a time,
// parsing any constructor flags between them, then hands the remaining
// tokens to the selected subcommand.
func (r *run) selectSubcommand(c *cobra.Command, cmd *schema.Command, args []string) error {
	usage := r.p.Usage(cmd.Name, "")
	specs := schema.Specs(cmd.Params)
	req := required(specs)

	var positionals []string
	rest := args
	for len(positionals) < len(req) {
		if len(rest) == 0 {
			missing := append(names(req[len(positionals):]), "subcommand")
			return r.p.usageError(usage, missingArguments(missing...))
		}
		positionals = append(positionals, rest[0])
		if err := c.Flags().Parse(rest[1:]); err != nil {
			return c.FlagErrorFunc()(c, err)
		}
		if help, _ := c.Flags().GetBool(schema.HelpFlag.Long); help {
			c.HelpFunc()(c, nil)
			return nil
		}
		rest = c.Flags().Args()
	}

	values, err := collect(specs, c.Flags(), positionals)
	if err != nil {
		return r.p.usageError(usage, err)
	}

	if len(rest) == 0 {
		return r.p.usageError(usage, missingArguments("subcommand"))
	}
	name := unmark(rest[0])
	sub, ok := cmd.Subcommand(name)
	if !ok {
		return r.p.usageError(usage, invalidChoice("subcommand", name, choiceNames(subcommandChoices(cmd))))
	}

	leaf := r.subcommand(cmd, sub, values)
	leaf.SetArgs(rest[1:])
	return leaf.Execute()
}

// subcommand builds a standalone cobra command for one method. ctorValues
// are the already parsed constructor parameters.
func (r *run) subcommand(cmd *schema.Command, sub *schema.Subcommand, ctorValues map[string]any) *cobra.Command {
	usage := r.p.Usage(cmd.Name, sub.Name)
	specs := schema.Specs(sub.Params)

	c := &cobra.Command{
		Use:               sub.Name,
		Short:             sub.Summary,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(c *cobra.Command, args []string) error {
			values, err := collect(specs, c.Flags(), args)
			if err != nil {
				return r.p.usageError(usage, err)
			}
			return r.record(cmd, sub, ctorValues, values)
		},
	}
	c.SetOut(r.p.config.Stdout)
	c.SetErr(r.p.config.Stderr)
	c.Flags().BoolP(schema.HelpFlag.Long, schema.HelpFlag.Short, false, helpUsage)
	addFlags(c.Flags(), specs)
	c.SetFlagErrorFunc(r.flagError(usage))

	page := helpPage{
		usage:       usage,
		description: sub.Summary,
		positionals: specs,
		command:     c,
	}
	c.SetHelpFunc(func(c *cobra.Command, _ []string) {
		page.write(c.OutOrStdout())
	})
	return c
}

func (r *run) flagError(usage string) func(*cobra.Command, error) error {
	return func(_ *cobra.Command, err error) error {
		return r.p.usageError(usage, err)
	}
}

// record stores the invocation. Globals are read from the root, whose
// persistent flags are shared with every command that inherited them.
func (r *run) record(cmd *schema.Command, sub *schema.Subcommand, values ...map[string]any) error {
	args := map[string]any{schema.CommandKey: cmd.Name}
	if err := readFlags(args, r.p.schema.Globals, r.root.PersistentFlags()); err != nil {
		return err
	}
	for _, v := range values {
		for name, value := range v {
			args[name] = value
		}
	}

	inv := &schema.Invocation{Command: cmd.Name, Args: args}
	if sub != nil {
		inv.Subcommand = sub.Name
		args[schema.SubcommandKey] = sub.Name
	}
	r.invocation = inv
	return nil
}

// help renders the page named by args: the root, a command, or a
// subcommand of it.
func (r *run) help(w io.Writer, args []string) error {
	p := r.p
	if len(args) == 0 {
		r.root.SetOut(w)
		r.root.HelpFunc()(r.root, nil)
		return nil
	}

	cmd, ok := p.schema.Command(args[0])
	if !ok {
		return p.usageError(p.Usage("", ""), invalidChoice("command", args[0], choiceNames(commandChoices(p.schema))))
	}
	if len(args) == 1 {
		c := r.commands[cmd.Name]
		c.SetOut(w)
		c.HelpFunc()(c, nil)
		return nil
	}

	if len(args) > 2 {
		return p.usageError(p.Usage(cmd.Name, ""), unrecognizedArguments(args[2:]))
	}
	sub, ok := cmd.Subcommand(args[1])
	if !ok {
		return p.usageError(p.Usage(cmd.Name, ""), invalidChoice("subcommand", args[1], choiceNames(subcommandChoices(cmd))))
	}
	c := r.subcommand(cmd, sub, nil)
	c.SetOut(w)
	c.HelpFunc()(c, nil)
	return nil
}
