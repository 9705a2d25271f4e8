package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/example/plugincli/internal/schema"
	"github.com/example/plugincli/pkg/plugin"
	"github.com/google/go-cmp/cmp"
)

type Builder struct{}

type BuilderOptions struct {
	ProjectRoot string
	Jobs        int `default:"1"`
}

func NewBuilder(BuilderOptions) *Builder { return &Builder{} }

func (b *Builder) Compile(struct{ Optimize bool }) error { return nil }

func (b *Builder) Package(struct {
	Count  int
	Output string `default:"dist"`
}) (string, error) {
	return "", nil
}

func (b *Builder) Doc(member string) string {
	switch member {
	case "":
		return "Build projects."
	case plugin.ConstructorDoc:
		return ":param project_root: root of the project"
	case "Compile":
		return "Compile the project."
	}
	return ""
}

type Reporter struct{ Verbose bool }

func NewReporter(opts struct{ Verbose bool }) *Reporter { return &Reporter{Verbose: opts.Verbose} }

func newTestParser(t *testing.T) (*Parser, *bytes.Buffer) {
	t.Helper()
	ns := plugin.NewNamespace("test").Register(NewBuilder, NewReporter)
	s, err := schema.Build(ns, []plugin.ParameterSpec{plugin.Optional("_debug", plugin.TypeBoolean, "debug output")})
	if err != nil {
		t.Fatalf("schema.Build() error = %v", err)
	}
	var out bytes.Buffer
	p, err := New(s, Config{
		Prog:        "prog",
		Description: "Test program.",
		Version:     "1.2.3",
		Stdout:      &out,
		Stderr:      &out,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, &out
}

func TestBuildUsage(t *testing.T) {
	tests := []struct {
		name     string
		segments [6]string
		want     string
	}{
		{
			name:     "Placeholders",
			segments: [6]string{"prog", OptionsPlaceholder, CommandPlaceholder, OptionsPlaceholder, SubcommandPlaceholder, OptionsPlaceholder},
			want:     "prog [args] <command> [args] [subcommand] [args] ",
		},
		{
			name:     "Empty segments skipped",
			segments: [6]string{"prog", "", "reporter", "", "", ""},
			want:     "prog reporter ",
		},
		{
			name:     "Existing trailing space kept single",
			segments: [6]string{"prog ", "[-d|--debug] ", "builder", "", "", ""},
			want:     "prog [-d|--debug] builder ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.segments
			if got := BuildUsage(s[0], s[1], s[2], s[3], s[4], s[5]); got != tt.want {
				t.Errorf("BuildUsage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	p, _ := newTestParser(t)

	tests := []struct {
		command    string
		subcommand string
		want       string
	}{
		{want: "prog [-d|--debug] <command> [args] [subcommand] [args] "},
		{command: "builder", want: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args] "},
		{command: "builder", subcommand: "compile", want: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root compile [-o|--optimize] "},
		{command: "builder", subcommand: "package", want: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root package [-o|--output OUTPUT] count "},
		{command: "reporter", want: "prog [-d|--debug] reporter [-v|--verbose] "},
	}

	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.subcommand, func(t *testing.T) {
			if got := p.Usage(tt.command, tt.subcommand); got != tt.want {
				t.Errorf("Usage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want *schema.Invocation
	}{
		{
			name: "Constructor positional then subcommand flag",
			argv: []string{"builder", "/tmp/x", "compile", "--optimize"},
			want: &schema.Invocation{
				Command:    "builder",
				Subcommand: "compile",
				Args: map[string]any{
					"_command": "builder", "_subcommand": "compile", "_debug": false,
					"project_root": "/tmp/x", "jobs": 1, "optimize": true,
				},
			},
		},
		{
			name: "Globals, constructor flags and integer positional",
			argv: []string{"-d", "builder", "-j", "4", "/tmp/x", "package", "3", "--output", "out.zip"},
			want: &schema.Invocation{
				Command:    "builder",
				Subcommand: "package",
				Args: map[string]any{
					"_command": "builder", "_subcommand": "package", "_debug": true,
					"project_root": "/tmp/x", "jobs": 4, "count": 3, "output": "out.zip",
				},
			},
		},
		{
			name: "Constructor flag after positional",
			argv: []string{"builder", "/tmp/x", "--jobs", "2", "compile"},
			want: &schema.Invocation{
				Command:    "builder",
				Subcommand: "compile",
				Args: map[string]any{
					"_command": "builder", "_subcommand": "compile", "_debug": false,
					"project_root": "/tmp/x", "jobs": 2, "optimize": false,
				},
			},
		},
		{
			name: "Negative integer positional",
			argv: []string{"builder", "-j", "-2", "/tmp/x", "package", "-3"},
			want: &schema.Invocation{
				Command:    "builder",
				Subcommand: "package",
				Args: map[string]any{
					"_command": "builder", "_subcommand": "package", "_debug": false,
					"project_root": "/tmp/x", "jobs": -2, "count": -3, "output": "dist",
				},
			},
		},
		{
			name: "Boolean flag present",
			argv: []string{"reporter", "--verbose"},
			want: &schema.Invocation{
				Command: "reporter",
				Args:    map[string]any{"_command": "reporter", "_debug": false, "verbose": true},
			},
		},
		{
			name: "Boolean flag absent",
			argv: []string{"reporter"},
			want: &schema.Invocation{
				Command: "reporter",
				Args:    map[string]any{"_command": "reporter", "_debug": false, "verbose": false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser(t)
			got, err := p.Parse(tt.argv)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		argv      []string
		wantUsage string
		wantMsg   string
	}{
		{
			name:      "No command",
			argv:      []string{},
			wantUsage: "prog [-d|--debug] <command> [args] [subcommand] [args] ",
			wantMsg:   "the following arguments are required: command",
		},
		{
			name:      "Unknown command lists choices",
			argv:      []string{"bogus"},
			wantUsage: "prog [-d|--debug] <command> [args] [subcommand] [args] ",
			wantMsg:   "argument command: invalid choice: 'bogus' (choose from 'builder', 'reporter')",
		},
		{
			name:      "Missing constructor positional",
			argv:      []string{"builder"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args] ",
			wantMsg:   "the following arguments are required: project_root, subcommand",
		},
		{
			name:      "Missing subcommand",
			argv:      []string{"builder", "/tmp/x"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args] ",
			wantMsg:   "the following arguments are required: subcommand",
		},
		{
			name:      "Unknown subcommand",
			argv:      []string{"builder", "/tmp/x", "deploy"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args] ",
			wantMsg:   "argument subcommand: invalid choice: 'deploy' (choose from 'compile', 'package')",
		},
		{
			name:      "Non-numeric integer flag",
			argv:      []string{"builder", "-j", "many", "/tmp/x", "compile"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args] ",
			wantMsg:   "--jobs",
		},
		{
			name:      "Non-numeric integer positional",
			argv:      []string{"builder", "/tmp/x", "package", "three"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root package [-o|--output OUTPUT] count ",
			wantMsg:   "argument count: invalid integer value: 'three'",
		},
		{
			name:      "Negative number instead of a subcommand",
			argv:      []string{"builder", "/tmp/x", "-1"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args] ",
			wantMsg:   "argument subcommand: invalid choice: '-1' (choose from 'compile', 'package')",
		},
		{
			name:      "Missing subcommand positional",
			argv:      []string{"builder", "/tmp/x", "package"},
			wantUsage: "prog [-d|--debug] builder [-j|--jobs JOBS] project_root package [-o|--output OUTPUT] count ",
			wantMsg:   "the following arguments are required: count",
		},
		{
			name:      "Extra positional",
			argv:      []string{"reporter", "extra"},
			wantUsage: "prog [-d|--debug] reporter [-v|--verbose] ",
			wantMsg:   "unrecognized arguments: extra",
		},
		{
			name:      "Unknown flag",
			argv:      []string{"reporter", "--bogus"},
			wantUsage: "prog [-d|--debug] reporter [-v|--verbose] ",
			wantMsg:   "unknown flag: --bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser(t)
			inv, err := p.Parse(tt.argv)
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", inv)
			}
			var usageErr *UsageError
			if !errors.As(err, &usageErr) {
				t.Fatalf("Parse() error = %T %v, want *UsageError", err, err)
			}
			if usageErr.Usage != tt.wantUsage {
				t.Errorf("Usage = %q, want %q", usageErr.Usage, tt.wantUsage)
			}
			if !strings.Contains(usageErr.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", usageErr.Error(), tt.wantMsg)
			}
			if usageErr.ExitCode() != 2 {
				t.Errorf("ExitCode() = %d, want 2", usageErr.ExitCode())
			}
		})
	}
}

type Calc struct{}

func NewCalc() *Calc { return &Calc{} }

func (c *Calc) Sum(struct {
	First  int
	Second int
	Scale  int `default:"1"`
}) int {
	return 0
}

type Dice struct{}

func NewDice(struct {
	Count int `arg:"6sided" default:"0"`
}) *Dice {
	return &Dice{}
}

func (d *Dice) Roll(struct{ Times int }) {}

func TestParseNegativeNumbers(t *testing.T) {
	s, err := schema.Build(plugin.NewNamespace("test").Register(NewCalc, NewDice), nil)
	if err != nil {
		t.Fatalf("schema.Build() error = %v", err)
	}

	tests := []struct {
		name    string
		argv    []string
		want    map[string]any
		wantErr string
	}{
		{
			name: "Negative first operand",
			argv: []string{"calc", "sum", "-1", "2"},
			want: map[string]any{"first": -1, "second": 2, "scale": 1},
		},
		{
			name: "Negative flag values and operands",
			argv: []string{"calc", "sum", "-1", "-s", "-3", "-2"},
			want: map[string]any{"first": -1, "second": -2, "scale": -3},
		},
		{
			name: "Inline flag value",
			argv: []string{"calc", "sum", "--scale=-4", "5", "-6"},
			want: map[string]any{"first": 5, "second": -6, "scale": -4},
		},
		{
			name: "After the terminator",
			argv: []string{"calc", "sum", "--", "-7", "8"},
			want: map[string]any{"first": -7, "second": 8, "scale": 1},
		},
		{
			name: "Digit shorthand keeps negatives as flags",
			argv: []string{"dice", "-6", "2", "roll", "3"},
			want: map[string]any{"6sided": 2, "times": 3},
		},
		{
			name:    "Negative operand counts as a positional",
			argv:    []string{"calc", "sum", "-1"},
			wantErr: "the following arguments are required: second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(s, Config{Prog: "prog", Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			inv, err := p.Parse(tt.argv)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got := make(map[string]any)
			for name, value := range inv.Args {
				if !strings.HasPrefix(name, schema.ReservedPrefix) {
					got[name] = value
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{
			name: "Root help",
			argv: []string{"-h"},
			want: []string{
				"usage: prog [-d|--debug] <command> [args] [subcommand] [args]\n",
				"Test program.",
				"commands:\n  builder - Build projects.\n  reporter\n",
				"--debug",
			},
		},
		{
			name: "Command help",
			argv: []string{"builder", "--help"},
			want: []string{
				"usage: prog [-d|--debug] builder [-j|--jobs JOBS] project_root [subcommand] [args]\n",
				"positional arguments:",
				"root of the project",
				"subcommands:\n  compile - Compile the project.\n  package\n",
			},
		},
		{
			name: "Help after constructor positional",
			argv: []string{"builder", "/tmp/x", "-h"},
			want: []string{"usage: prog [-d|--debug] builder "},
		},
		{
			name: "Subcommand help",
			argv: []string{"builder", "/tmp/x", "compile", "-h"},
			want: []string{"usage: prog [-d|--debug] builder [-j|--jobs JOBS] project_root compile [-o|--optimize]\n", "--optimize"},
		},
		{
			name: "Help command",
			argv: []string{"help", "builder", "package"},
			want: []string{"usage: prog [-d|--debug] builder [-j|--jobs JOBS] project_root package [-o|--output OUTPUT] count\n"},
		},
		{
			name: "Version",
			argv: []string{"--version"},
			want: []string{"1.2.3\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestParser(t)
			_, err := p.Parse(tt.argv)
			if !errors.Is(err, ErrShown) {
				t.Fatalf("Parse() error = %v, want ErrShown", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestParseIsRepeatable(t *testing.T) {
	p, _ := newTestParser(t)
	if _, err := p.Parse([]string{"reporter", "--verbose"}); err != nil {
		t.Fatalf("first Parse() error = %v", err)
	}
	inv, err := p.Parse([]string{"reporter"})
	if err != nil {
		t.Fatalf("second Parse() error = %v", err)
	}
	if inv.Args["verbose"] != false {
		t.Errorf("verbose = %v after a fresh parse, want false", inv.Args["verbose"])
	}
}

func TestHelp(t *testing.T) {
	p, _ := newTestParser(t)
	var out bytes.Buffer
	if err := p.Help(&out, "reporter", ""); err != nil {
		t.Fatalf("Help() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "usage: prog [-d|--debug] reporter [-v|--verbose]\n") {
		t.Errorf("Help() output = %q", out.String())
	}

	var usageErr *UsageError
	if err := p.Help(&out, "nope", ""); !errors.As(err, &usageErr) {
		t.Errorf("Help(nope) error = %v, want *UsageError", err)
	}
}

func TestNewVersionCollision(t *testing.T) {
	s, err := schema.Build(plugin.NewNamespace("test"), []plugin.ParameterSpec{plugin.Optional("verbose", plugin.TypeBoolean, "")})
	if err != nil {
		t.Fatalf("schema.Build() error = %v", err)
	}
	if _, err := New(s, Config{Prog: "prog"}); err != nil {
		t.Errorf("New() without version error = %v, want nil", err)
	}
	if _, err := New(s, Config{Prog: "prog", Version: "1.0"}); !errors.Is(err, schema.ErrCollision) {
		t.Errorf("New() with version error = %v, want ErrCollision", err)
	}
}
