package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/kart-io/formfill/pkg/infra/server/transport"
	grpcopts "github.com/kart-io/formfill/pkg/options/server/grpc"
)

// Aliases so callers can configure the transport without importing the
// options package directly.
type (
	// Options contains gRPC server configuration.
	Options = grpcopts.Options
	// Option is a function that configures Options.
	Option = grpcopts.Option
)

var (
	NewOptions         = grpcopts.NewOptions
	WithAddr           = grpcopts.WithAddr
	WithTimeout        = grpcopts.WithTimeout
	WithMaxRecvMsgSize = grpcopts.WithMaxRecvMsgSize
	WithMaxSendMsgSize = grpcopts.WithMaxSendMsgSize
	WithReflection     = grpcopts.WithReflection
)

// Server wraps a grpc.Server behind the transport.Transport lifecycle so
// the server manager can start and stop it alongside the HTTP transport.
type Server struct {
	opts     *grpcopts.Options
	server   *grpc.Server
	listener net.Listener
	services []*transport.GRPCServiceDesc
}

var (
	_ transport.Transport     = (*Server)(nil)
	_ transport.GRPCRegistrar = (*Server)(nil)
)

// NewServer creates a new gRPC server with the given options.
func NewServer(opts ...grpcopts.Option) *Server {
	options := grpcopts.NewOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Server{
		opts: options,
		server: grpc.NewServer(
			grpc.MaxRecvMsgSize(options.MaxRecvMsgSize),
			grpc.MaxSendMsgSize(options.MaxSendMsgSize),
		),
	}
}

// Name returns the transport name.
func (s *Server) Name() string {
	return "grpc"
}

// RegisterGRPCService records a service descriptor; actual registration on
// the grpc.Server is deferred to Start.
func (s *Server) RegisterGRPCService(desc *transport.GRPCServiceDesc) error {
	s.services = append(s.services, desc)
	return nil
}

// RegisterService registers a service directly on the underlying
// grpc.Server, bypassing the deferred descriptor list.
func (s *Server) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	s.server.RegisterService(desc, impl)
}

// Server returns the underlying grpc.Server.
func (s *Server) Server() *grpc.Server {
	return s.server
}

// Start binds the listener and begins serving. It returns immediately once
// the listener is up; serve errors after that point are dropped unless they
// happen before Start returns.
func (s *Server) Start(ctx context.Context) error {
	for _, svc := range s.services {
		if desc, ok := svc.ServiceDesc.(*grpc.ServiceDesc); ok {
			s.server.RegisterService(desc, svc.ServiceImpl)
		}
	}

	if s.opts.EnableReflection {
		reflection.Register(s.server)
	}

	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Stop drains in-flight RPCs; if ctx expires first the server is
// force-stopped.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	case <-done:
		return nil
	}
}
