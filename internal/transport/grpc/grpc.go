// Package grpc implements the gRPC transport for voxlate.
//
// This transport exposes a gRPC server for low-latency utterance submission
// from recognizer processes running on the same machine or edge devices. The
// standard health service and server reflection are registered so callers can
// probe and discover the server before the typed service is compiled in.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/voxlate/voxlate/internal/transport"
)

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	t.server = grpc.NewServer()
	t.health = health.NewServer()
	healthpb.RegisterHealthServer(t.server, t.health)
	reflection.Register(t.server)

	// TODO: Register the generated TranslationService server here once proto is compiled.
	// pb.RegisterTranslationServiceServer(t.server, &serviceServer{handler: handler})

	t.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	slog.Info("grpc transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}
