package server

import (
	"net"

	"google.golang.org/grpc"

	"github.com/mentatproj/mentat/pkg/logger"
)

// GRPCAPIServer runs the gRPC side of the api server. Only reflection is
// registered today; service definitions land here as they appear.
type GRPCAPIServer struct {
	*grpc.Server
	address string
}

// NewGRPCAPIServer wraps an assembled grpc.Server with its listen address.
func NewGRPCAPIServer(srv *grpc.Server, address string) *GRPCAPIServer {
	return &GRPCAPIServer{Server: srv, address: address}
}

// Run spawns the gRPC listener and blocks until it exits.
func (s *GRPCAPIServer) Run() {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		logger.Error("failed to listen: %s", err.Error())
		return
	}

	logger.Info("start grpc server at %s", s.address)
	if err := s.Serve(listen); err != nil {
		logger.Error("failed to start grpc server: %s", err.Error())
	}
}

// Stop stops the gRPC server gracefully.
func (s *GRPCAPIServer) Stop() {
	s.GracefulStop()
	logger.Info("grpc server on %s stopped", s.address)
}
