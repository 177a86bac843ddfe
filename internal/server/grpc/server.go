// Package grpc serves the login service over gRPC using a hand-written
// service descriptor with google.protobuf.Struct payloads.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/logging"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/services"
	"google.golang.org/grpc"
)

// Authenticator is satisfied by *services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (services.Outcome, error)
	Identify(ctx context.Context, token string) (models.Identity, error)
}

type GRPCServer struct {
	address string
	auth    Authenticator
	logger  logging.Logger
	timeout time.Duration
}

func NewGRPCServer(a string, l logging.Logger, auth Authenticator, timeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    auth,
		timeout: timeout,
	}
}

// NewServer builds a grpc.Server with the interceptors and the auth
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.timeoutInterceptor, s.accessTokenInterceptor))
	RegisterAuthServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
