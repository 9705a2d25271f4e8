// Package plugins holds the commands shipped with plugincli
package plugins

import (
	"net"
	"time"

	"github.com/example/plugincli/pkg/plugin"
)

const pluginVersion = "1.0.0"

// Settings carries host configuration into the plugins. The host fills it
// in after parsing and before dispatch.
type Settings struct {
	// HealthTimeout bounds each health check when --timeout is not given
	HealthTimeout time.Duration
	// ServerReady, when set, is called with the bound address once the
	// server command is listening.
	ServerReady func(net.Addr)
}

// Namespace returns the built-in commands
func Namespace(settings *Settings) *plugin.Namespace {
	if settings == nil {
		settings = &Settings{}
	}
	return plugin.NewNamespace("plugincli").Register(
		NewHello,
		NewAddition,
		newHealthConstructor(settings),
		newServerConstructor(settings),
	)
}
