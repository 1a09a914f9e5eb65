package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service reported next to the overall ("") status.
const ServiceName = "business-dashboard"

// HealthServer serves grpc.health.v1 with a status driven by a probe function.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	check  func(ctx context.Context) error
	logger *slog.Logger
}

// NewHealthServer creates the server in NOT_SERVING state; call Probe or Watch to update it.
func NewHealthServer(check func(ctx context.Context) error, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	h := &HealthServer{
		grpc:   grpcServer,
		health: healthServer,
		check:  check,
		logger: logger,
	}
	h.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return h
}

// Serve blocks serving on lis until Stop.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("grpc health listening", "addr", lis.Addr().String())
	return h.grpc.Serve(lis)
}

// Probe runs the check once and publishes the result.
func (h *HealthServer) Probe(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if h.check != nil {
		if err := h.check(ctx); err != nil {
			h.logger.Warn("health probe failed", "error", err)
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	h.set(status)
	return status
}

// Watch probes immediately and then every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}

func (h *HealthServer) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}
