package grpc

import (
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServicePrefix namespaces per-stream health entries, e.g. "maritime.eta".
const ServicePrefix = "maritime."

// Server exposes the standard gRPC health service. The overall entry ("")
// is SERVING only while every reported stream is healthy.
type Server struct {
	health     *health.Server
	grpcServer *grpc.Server

	mu      sync.Mutex
	streams map[string]bool
}

func NewServer() *Server {
	s := &Server{
		health:  health.NewServer(),
		streams: make(map[string]bool),
	}
	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	slog.Info("gRPC server listening", "addr", addr)
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Report records the outcome of the latest refresh of a stream.
func (s *Server) Report(stream string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := err == nil
	prev, seen := s.streams[stream]
	s.streams[stream] = ok

	s.health.SetServingStatus(ServicePrefix+stream, servingStatus(ok))

	overall := true
	for _, healthy := range s.streams {
		overall = overall && healthy
	}
	s.health.SetServingStatus("", servingStatus(overall))

	if !seen || prev != ok {
		slog.Info("stream health changed", "stream", stream, "healthy", ok)
	}
}

func servingStatus(ok bool) healthpb.HealthCheckResponse_ServingStatus {
	if ok {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
