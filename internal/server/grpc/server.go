// Package grpc exposes the authority over gRPC as blinkauth.v1.AuthService.
package grpc

import (
	"context"
	"net"

	"github.com/blinkdrive/blinkauth/internal/common"
	"github.com/blinkdrive/blinkauth/internal/logging"
	"google.golang.org/grpc"
)

// authService is what the transport needs from services.AuthService.
type authService interface {
	Register(ctx context.Context, username, password string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (string, bool, error)
	ValidateToken(ctx context.Context, token string) bool
	RevokeToken(ctx context.Context, token string) (bool, error)
}

type GRPCServer struct {
	address string
	auth    authService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as authService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    as,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestLogInterceptor))
	srv.RegisterService(&serviceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String(), "service", common.ServiceName)

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
