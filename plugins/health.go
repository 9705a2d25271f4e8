package plugins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/plugincli/internal/health"
	"github.com/example/plugincli/pkg/plugin"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultHealthTimeout = 5 * time.Second

// Health checks a gRPC service through the standard health protocol
type Health struct {
	target  string
	timeout time.Duration
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
}

// HealthOptions are the options of the health command
type HealthOptions struct {
	Target  string
	Timeout int `default:"0"`
}

func newHealthConstructor(settings *Settings) func(context.Context, HealthOptions) (*Health, error) {
	return func(ctx context.Context, opts HealthOptions) (*Health, error) {
		timeout := time.Duration(opts.Timeout) * time.Second
		if timeout <= 0 {
			timeout = settings.HealthTimeout
		}
		if timeout <= 0 {
			timeout = defaultHealthTimeout
		}
		return NewHealth(ctx, opts.Target, timeout)
	}
}

// NewHealth connects to target. The connection is established lazily by
// the first check.
func NewHealth(ctx context.Context, target string, timeout time.Duration) (*Health, error) {
	if target == "" {
		return nil, errors.New("target is required")
	}
	conn, err := health.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	return &Health{
		target:  target,
		timeout: timeout,
		conn:    conn,
		client:  healthpb.NewHealthClient(conn),
	}, nil
}

// CheckArgs selects the service to check
type CheckArgs struct {
	Service string `default:""`
}

// Check asks the target for its status once
func (h *Health) Check(ctx context.Context, args CheckArgs) (*healthpb.HealthCheckResponse, error) {
	defer h.conn.Close()
	return health.Check(ctx, h.client, args.Service, h.timeout)
}

// WatchArgs configures a series of checks
type WatchArgs struct {
	Service  string `default:""`
	Count    int    `default:"3"`
	Interval int    `default:"1"`
}

// Watch checks the target repeatedly and reports one line per check. It
// fails when any check failed.
func (h *Health) Watch(ctx context.Context, args WatchArgs) ([]string, error) {
	defer h.conn.Close()
	if args.Count < 1 {
		return nil, fmt.Errorf("count must be positive: %d", args.Count)
	}
	if args.Interval < 0 {
		return nil, fmt.Errorf("interval must not be negative: %d", args.Interval)
	}

	var lines []string
	var failures int
	interval := time.Duration(args.Interval) * time.Second
	if interval == 0 {
		interval = time.Millisecond
	}
	err := health.Monitor(ctx, h.client, health.HealthCheck{
		Service:    args.Service,
		Interval:   interval,
		Timeout:    h.timeout,
		MaxRetries: 1,
		Rounds:     args.Count,
		OnCheck: func(resp *healthpb.HealthCheckResponse) {
			if resp.GetStatus() == healthpb.HealthCheckResponse_SERVING {
				lines = append(lines, fmt.Sprintf("%s: %s", h.target, resp.GetStatus()))
			}
		},
		OnUnhealthy: func(err error) {
			failures++
			lines = append(lines, fmt.Sprintf("%s: %v", h.target, err))
		},
	})
	if err != nil {
		return lines, err
	}
	if failures > 0 {
		return lines, fmt.Errorf("%d of %d checks failed", failures, args.Count)
	}
	return lines, nil
}

// Doc implements plugin.Documented
func (h *Health) Doc(member string) string {
	switch member {
	case "":
		return "Check the health of a gRPC service"
	case plugin.ConstructorDoc:
		return `:param target: address of the service, host:port
		:param timeout: seconds to wait for each check (0 uses the configured timeout)`
	case "Check":
		return `Check the service once.
		:param service: service name, empty for the whole server`
	case "Watch":
		return `Check the service repeatedly.
		:param service: service name, empty for the whole server
		:param count: number of checks
		:param interval: seconds between checks`
	}
	return ""
}
