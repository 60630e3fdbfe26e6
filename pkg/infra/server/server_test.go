package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kart-io/formfill/pkg/infra/server/service"
	"github.com/kart-io/formfill/pkg/infra/server/transport"
	grpcopts "github.com/kart-io/formfill/pkg/options/server/grpc"
	httpopts "github.com/kart-io/formfill/pkg/options/server/http"
)

// mockService implements service.Service. Shared with registry_test.go.
type mockService struct {
	name        string
	initCalled  bool
	closeCalled bool
	initErr     error
	closeErr    error
	mu          sync.Mutex
}

func (s *mockService) ServiceName() string {
	return s.name
}

func (s *mockService) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalled = true
	return s.initErr
}

func (s *mockService) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalled = true
	return s.closeErr
}

func (s *mockService) WasInitCalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initCalled
}

func (s *mockService) WasCloseCalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalled
}

// mockRunnable implements Runnable. Shared with lifecycle_test.go.
type mockRunnable struct {
	name        string
	startCalled bool
	stopCalled  bool
	startErr    error
	stopErr     error
	mu          sync.Mutex
}

func (r *mockRunnable) Name() string {
	return r.name
}

func (r *mockRunnable) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startCalled = true
	return r.startErr
}

func (r *mockRunnable) Stop(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopCalled = true
	return r.stopErr
}

func (r *mockRunnable) WasStartCalled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startCalled
}

func (r *mockRunnable) WasStopCalled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopCalled
}

// randomPortHTTP returns HTTP options bound to an ephemeral port.
func randomPortHTTP() *httpopts.Options {
	return &httpopts.Options{
		Addr:         ":0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  10 * time.Second,
	}
}

func randomPortGRPC() *grpcopts.Options {
	return &grpcopts.Options{
		Addr:             ":0",
		Timeout:          10 * time.Second,
		MaxRecvMsgSize:   16 * 1024 * 1024,
		MaxSendMsgSize:   16 * 1024 * 1024,
		EnableReflection: true,
	}
}

// startForTest starts the manager and schedules a graceful stop.
func startForTest(tb testing.TB, mgr *Manager) {
	tb.Helper()
	if err := mgr.Start(context.Background()); err != nil {
		tb.Fatalf("failed to start manager: %v", err)
	}
	tb.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mgr.Stop(shutdownCtx)
	})
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want func(*Manager) bool
	}{
		{
			name: "default options",
			want: func(m *Manager) bool { return m != nil && m.registry != nil },
		},
		{
			name: "http only mode",
			opts: []Option{WithMode(ModeHTTPOnly)},
			want: func(m *Manager) bool { return m.httpServer != nil && m.grpcServer == nil },
		},
		{
			name: "grpc only mode",
			opts: []Option{WithMode(ModeGRPCOnly)},
			want: func(m *Manager) bool { return m.httpServer == nil && m.grpcServer != nil },
		},
		{
			name: "both modes",
			opts: []Option{WithMode(ModeBoth)},
			want: func(m *Manager) bool { return m.httpServer != nil && m.grpcServer != nil },
		},
		{
			name: "custom shutdown timeout",
			opts: []Option{WithShutdownTimeout(60 * time.Second)},
			want: func(m *Manager) bool { return m.opts.ShutdownTimeout == 60*time.Second },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.want(NewManager(tt.opts...)) {
				t.Errorf("NewManager() validation failed for %s", tt.name)
			}
		})
	}
}

func TestManagerAccessors(t *testing.T) {
	mgr := NewManager()
	if mgr.Registry() == nil {
		t.Error("Registry() returned nil")
	}
	if mgr.Registry() != mgr.registry {
		t.Error("Registry() did not return the underlying registry")
	}

	httpOnly := NewManager(WithMode(ModeHTTPOnly))
	if httpOnly.HTTPServer() == nil {
		t.Error("HTTPServer() returned nil in HTTP-only mode")
	}
	if httpOnly.GRPCServer() != nil {
		t.Error("GRPCServer() should be nil in HTTP-only mode")
	}

	grpcOnly := NewManager(WithMode(ModeGRPCOnly))
	if grpcOnly.GRPCServer() == nil {
		t.Error("GRPCServer() returned nil in gRPC-only mode")
	}
	if grpcOnly.HTTPServer() != nil {
		t.Error("HTTPServer() should be nil in gRPC-only mode")
	}
}

func TestManagerRegisterService(t *testing.T) {
	mgr := NewManager()
	svc := &mockService{name: "fill-service"}

	if err := mgr.RegisterService(svc, nil); err != nil {
		t.Fatalf("RegisterService() error = %v", err)
	}

	registered, ok := mgr.registry.GetService("fill-service")
	if !ok {
		t.Fatal("service was not registered")
	}
	if registered != svc {
		t.Error("registered service does not match")
	}
}

func TestManagerRegisterGRPC(t *testing.T) {
	mgr := NewManager()
	svc := &mockService{name: "document-service"}
	desc := &transport.GRPCServiceDesc{
		ServiceDesc: "test-desc",
		ServiceImpl: "test-impl",
	}

	if err := mgr.RegisterGRPC(svc, desc); err != nil {
		t.Fatalf("RegisterGRPC() error = %v", err)
	}

	registered, ok := mgr.registry.GetService("document-service")
	if !ok {
		t.Fatal("gRPC service was not registered")
	}
	if registered != svc {
		t.Error("registered gRPC service does not match")
	}
}

func TestManagerAddServer(t *testing.T) {
	mgr := NewManager()
	runnable := &mockRunnable{name: "ingest-worker"}

	mgr.AddServer(runnable)

	if len(mgr.servers) != 1 {
		t.Fatalf("expected 1 server, got %d", len(mgr.servers))
	}
	if mgr.servers[0] != runnable {
		t.Error("added server does not match")
	}
}

func TestManagerAddServerConcurrent(t *testing.T) {
	mgr := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mgr.AddServer(&mockRunnable{name: "worker"})
		}()
	}
	wg.Wait()

	if len(mgr.servers) != 100 {
		t.Errorf("expected 100 servers, got %d", len(mgr.servers))
	}
}

func TestManagerStartStop(t *testing.T) {
	mgr := NewManager(
		WithMode(ModeHTTPOnly),
		WithHTTPOptions(randomPortHTTP()),
	)

	if err := mgr.RegisterService(&mockService{name: "fill-service"}, nil); err != nil {
		t.Fatalf("RegisterService() error = %v", err)
	}

	// double start
	mgr.started = true
	if err := mgr.Start(context.Background()); err == nil {
		t.Error("expected error when starting an already started manager")
	}
	mgr.started = false

	// stop without start
	if err := mgr.Stop(context.Background()); err != nil {
		t.Errorf("Stop() on non-started manager should not error, got: %v", err)
	}
}

func TestManagerServiceLifecycle(t *testing.T) {
	mgr := NewManager(WithMode(ModeHTTPOnly))
	svc := &mockService{name: "lifecycle-service"}

	if err := mgr.RegisterService(svc, nil); err != nil {
		t.Fatalf("RegisterService() error = %v", err)
	}

	ctx := context.Background()
	for _, s := range mgr.registry.GetAllServices() {
		if init, ok := s.(service.Initializable); ok {
			if err := init.Init(ctx); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
		}
	}
	if !svc.WasInitCalled() {
		t.Error("service Init() was not called")
	}

	for _, s := range mgr.registry.GetAllServices() {
		if closer, ok := s.(service.Closeable); ok {
			if err := closer.Close(ctx); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
		}
	}
	if !svc.WasCloseCalled() {
		t.Error("service Close() was not called")
	}
}

func TestManagerServiceInitError(t *testing.T) {
	mgr := NewManager(WithMode(ModeHTTPOnly))
	svc := &mockService{
		name:    "error-service",
		initErr: errors.New("init failed"),
	}

	if err := mgr.RegisterService(svc, nil); err != nil {
		t.Fatalf("RegisterService() error = %v", err)
	}

	for _, s := range mgr.registry.GetAllServices() {
		init, ok := s.(service.Initializable)
		if !ok {
			continue
		}
		err := init.Init(context.Background())
		if err == nil {
			t.Fatal("expected init error, got nil")
		}
		if err.Error() != "init failed" {
			t.Errorf("expected 'init failed', got '%v'", err)
		}
	}
}

func TestManagerCustomServerLifecycle(t *testing.T) {
	mgr := NewManager()
	runnable := &mockRunnable{name: "ingest-worker"}
	mgr.AddServer(runnable)

	ctx := context.Background()
	for _, server := range mgr.servers {
		if err := server.Start(ctx); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	}
	if !runnable.WasStartCalled() {
		t.Error("custom server Start() was not called")
	}

	for _, server := range mgr.servers {
		if err := server.Stop(ctx); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
	}
	if !runnable.WasStopCalled() {
		t.Error("custom server Stop() was not called")
	}
}

func TestManagerCustomServerErrors(t *testing.T) {
	mgr := NewManager()
	mgr.AddServer(&mockRunnable{
		name:     "error-server",
		startErr: errors.New("start failed"),
		stopErr:  errors.New("stop failed"),
	})

	ctx := context.Background()
	for _, server := range mgr.servers {
		if err := server.Start(ctx); err == nil || err.Error() != "start failed" {
			t.Errorf("expected 'start failed', got '%v'", err)
		}
		if err := server.Stop(ctx); err == nil || err.Error() != "stop failed" {
			t.Errorf("expected 'stop failed', got '%v'", err)
		}
	}
}

func TestManagerWaitNotStarted(t *testing.T) {
	mgr := NewManager()
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := mgr.Wait(ctx)
	if err == nil {
		t.Fatal("Wait() should error when manager is not started")
	}
	if err.Error() != "server manager not started" {
		t.Errorf("expected 'server manager not started', got: %v", err)
	}
}

func TestManagerWaitNoServers(t *testing.T) {
	mgr := NewManager(WithMode(ModeHTTPOnly))

	mgr.mu.Lock()
	mgr.started = true
	mgr.httpServer = nil
	mgr.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := mgr.Wait(ctx)
	if err == nil {
		t.Fatal("Wait() should error when no servers are configured")
	}
	if err.Error() != "no servers configured" {
		t.Errorf("expected 'no servers configured', got: %v", err)
	}
}

// TestManagerWaitReady 覆盖三种部署模式下的就绪等待。
func TestManagerWaitReady(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{
			name: "http only",
			opts: []Option{WithMode(ModeHTTPOnly), WithHTTPOptions(randomPortHTTP())},
		},
		{
			name: "grpc only",
			opts: []Option{WithMode(ModeGRPCOnly), WithGRPCOptions(randomPortGRPC())},
		},
		{
			name: "both",
			opts: []Option{
				WithMode(ModeBoth),
				WithHTTPOptions(randomPortHTTP()),
				WithGRPCOptions(randomPortGRPC()),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(tt.opts...)
			startForTest(t, mgr)

			waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mgr.Wait(waitCtx); err != nil {
				t.Errorf("Wait() should succeed once servers are ready, got: %v", err)
			}
		})
	}
}

func TestManagerWaitIdempotent(t *testing.T) {
	mgr := NewManager(
		WithMode(ModeHTTPOnly),
		WithHTTPOptions(randomPortHTTP()),
	)
	startForTest(t, mgr)

	for i := 0; i < 3; i++ {
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := mgr.Wait(waitCtx)
		cancel()
		if err != nil {
			t.Errorf("Wait() call %d should succeed, got: %v", i+1, err)
		}
	}
}

func BenchmarkManagerWait(b *testing.B) {
	mgr := NewManager(
		WithMode(ModeHTTPOnly),
		WithHTTPOptions(randomPortHTTP()),
	)
	startForTest(b, mgr)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = mgr.Wait(waitCtx)
		cancel()
	}
}
