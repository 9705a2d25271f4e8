// Package app is the plugincli host program: it declares the global
// options, loads the settings file, configures logging and renders the
// result of the selected command.
package app

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/example/plugincli/internal/config"
	"github.com/example/plugincli/internal/logx"
	"github.com/example/plugincli/pkg/cli"
	"github.com/example/plugincli/pkg/plugin"
	"github.com/example/plugincli/pkg/ui"
	"github.com/example/plugincli/plugins"
	"github.com/rs/zerolog/log"
)

const (
	// Prog is the program name shown in usage lines
	Prog = "plugincli"
	// Version is printed by --version
	Version = "1.0.0"

	description = "Run the built-in plugins from the command line."
)

// Keys of the global options in a parsed invocation
const (
	keyDebug  = "_debug"
	keyQuiet  = "_quiet"
	keyConfig = "_config"
	keyOutput = "_output"
)

func globals() []plugin.ParameterSpec {
	cfg := plugin.Optional(keyConfig, plugin.TypeText, "settings file")
	cfg.Default = config.DefaultPath
	return []plugin.ParameterSpec{
		plugin.Optional(keyDebug, plugin.TypeBoolean, "log debug messages"),
		plugin.Optional(keyQuiet, plugin.TypeBoolean, "log errors only"),
		cfg,
		plugin.Optional(keyOutput, plugin.TypeText, "result format: text, json or yaml (default from the settings file)"),
	}
}

// Run executes one command line and returns the process exit status:
// 0 on success, 1 when the command failed and 2 for usage errors.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	reporter := ui.NewReporter(Prog, ui.FormatText, stdout, stderr)

	// Build and parse run before the settings file and the global options
	// are known. They log at the default level.
	logx.Setup(stderr)
	logx.Configure(config.Default().LogLevel)

	settings := &plugins.Settings{}
	core, err := cli.New(cli.Options{
		Prog:        Prog,
		Namespace:   plugins.Namespace(settings),
		Description: description,
		Version:     Version,
		Globals:     globals(),
		Stdout:      stdout,
		Stderr:      stderr,
	})
	if err != nil {
		reporter.Error(err)
		return cli.ExitCode(err)
	}

	inv, err := core.Parse(argv)
	if err != nil {
		if cli.ExitCode(err) != 0 {
			reporter.Error(err)
		}
		return cli.ExitCode(err)
	}

	cfg, err := configure(inv)
	if err != nil {
		reporter.Error(err)
		return 1
	}
	settings.HealthTimeout = cfg.Health.Timeout()
	settings.ServerReady = func(addr net.Addr) {
		log.Info().Str("address", addr.String()).Msg("Server listening")
	}

	reporter = ui.NewReporter(Prog, cfg.Output, stdout, stderr)
	result, err := core.Run(ctx, inv)
	if err != nil {
		log.Debug().Err(err).Str("command", inv.Command).Msg("Command failed")
		reporter.Error(err)
		return cli.ExitCode(err)
	}
	if err := reporter.Result(result); err != nil {
		reporter.Error(err)
		return 1
	}
	return 0
}

// configure loads the settings file and applies the global options on
// top of it.
func configure(inv *cli.Invocation) (*config.AppConfig, error) {
	path, _ := inv.Args[keyConfig].(string)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if output, _ := inv.Args[keyOutput].(string); output != "" {
		cfg.Output = output
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --output: %w", err)
		}
	}

	level := cfg.LogLevel
	if debug, _ := inv.Args[keyDebug].(bool); debug {
		level = "debug"
	}
	if quiet, _ := inv.Args[keyQuiet].(bool); quiet {
		level = "error"
	}
	logx.Configure(level)

	log.Debug().
		Str("config", path).
		Str("output", cfg.Output).
		Str("log_level", level).
		Msg("Loaded settings")
	return cfg, nil
}
