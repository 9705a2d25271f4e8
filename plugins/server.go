package plugins

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/example/plugincli/internal/health"
	"github.com/example/plugincli/pkg/plugin"
)

// Server is a gRPC health server that ran until it was interrupted
type Server struct {
	Address string        `json:"address" yaml:"address"`
	Uptime  time.Duration `json:"uptime" yaml:"uptime"`
}

// ServerOptions are the options of the server command
type ServerOptions struct {
	Address string `default:"127.0.0.1:50051"`
}

func newServerConstructor(settings *Settings) func(context.Context, ServerOptions) (*Server, error) {
	return func(ctx context.Context, opts ServerOptions) (*Server, error) {
		return RunServer(ctx, opts.Address, settings.ServerReady)
	}
}

// RunServer serves the health service on address until ctx is done
func RunServer(ctx context.Context, address string, ready func(net.Addr)) (*Server, error) {
	server := &Server{Address: address}
	started := time.Now()
	err := health.Serve(ctx, address, func(addr net.Addr) {
		server.Address = addr.String()
		if ready != nil {
			ready(addr)
		}
	})
	if err != nil {
		return nil, err
	}
	server.Uptime = time.Since(started).Round(time.Millisecond)
	return server, nil
}

func (s *Server) String() string {
	return fmt.Sprintf("server on %s stopped after %s", s.Address, s.Uptime)
}

// Doc implements plugin.Documented
func (s *Server) Doc(member string) string {
	switch member {
	case "":
		return "Serve the gRPC health protocol until interrupted"
	case plugin.ConstructorDoc:
		return ":param address: host:port to listen on"
	}
	return ""
}
