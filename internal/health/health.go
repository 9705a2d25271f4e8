// Package health serves and checks the standard gRPC health protocol
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ErrNotServing is reported when a check answers with any status other
// than SERVING.
var ErrNotServing = errors.New("service not serving")

// StartHealthServer registers a health service on server, reporting the
// overall status as SERVING.
func StartHealthServer(server *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return healthServer
}

// Serve listens on addr and serves the health service until ctx is done.
// ready, when not nil, receives the bound address before serving starts.
func Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serve(ctx, listener, ready)
}

// serve owns listener. The server is stopped before serve returns, also
// when it fails.
func serve(ctx context.Context, listener net.Listener, ready func(net.Addr)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := grpc.NewServer()
	healthServer := StartHealthServer(server)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		healthServer.Shutdown()
		server.GracefulStop()
	}()

	log.Info().Str("addr", listener.Addr().String()).Msg("Starting health server")
	if ready != nil {
		ready(listener.Addr())
	}
	if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		server.Stop()
		cancel()
		<-stopped
		return fmt.Errorf("health server: %w", err)
	}
	<-stopped
	return nil
}

// Dial opens a plaintext client connection to target
func Dial(ctx context.Context, target string) (*grpc.ClientConn, error) {
	conn, err := grpc.DialContext(ctx, target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	return conn, nil
}

// Check asks for the status of service once. A response other than
// SERVING is returned together with ErrNotServing.
func Check(ctx context.Context, client healthpb.HealthClient, service string, timeout time.Duration) (*healthpb.HealthCheckResponse, error) {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.Check(checkCtx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return resp, fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return resp, nil
}

// HealthCheck configures Monitor
type HealthCheck struct {
	Service    string
	Interval   time.Duration
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// Rounds stops the monitor after that many checks; zero runs until
	// the context is done.
	Rounds      int
	OnCheck     func(*healthpb.HealthCheckResponse)
	OnUnhealthy func(error)
}

// Monitor checks the service every interval, retrying failed checks,
// and reports each outcome through the callbacks.
func Monitor(ctx context.Context, client healthpb.HealthClient, config HealthCheck) error {
	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	retries := config.MaxRetries
	if retries < 1 {
		retries = 1
	}

	for round := 0; config.Rounds == 0 || round < config.Rounds; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		var lastErr error
		var resp *healthpb.HealthCheckResponse
		for retry := 0; retry < retries; retry++ {
			resp, lastErr = Check(ctx, client, config.Service, config.Timeout)
			if lastErr == nil {
				break
			}
			log.Debug().Err(lastErr).Int("retry", retry).Msg("Health check failed")
			time.Sleep(config.RetryDelay)
		}

		if resp != nil && config.OnCheck != nil {
			config.OnCheck(resp)
		}
		if lastErr != nil && config.OnUnhealthy != nil {
			config.OnUnhealthy(lastErr)
		}
	}
	return nil
}
