package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// DaemonServer serves the colony service over a Unix socket and owns the
// background refresh runner
type DaemonServer struct {
	mediator common.Mediator
	listener net.Listener
	logger   common.Logger
	runner   *RefreshRunner
	clock    shared.Clock
	started  time.Time

	shutdownTimeout time.Duration

	// Shutdown coordination
	shutdownChan chan os.Signal
	done         chan struct{}
	stopOnce     sync.Once
}

// NewDaemonServer creates a daemon listening on socketPath. SIGINT and
// SIGTERM trigger a graceful shutdown.
func NewDaemonServer(mediator common.Mediator, logger common.Logger, socketPath string) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := NewDaemonServerWithListener(mediator, logger, listener)
	signal.Notify(server.shutdownChan, os.Interrupt, syscall.SIGTERM)
	return server, nil
}

// NewDaemonServerWithListener creates a daemon serving on an existing
// listener. No signal handling is installed.
func NewDaemonServerWithListener(mediator common.Mediator, logger common.Logger, listener net.Listener) *DaemonServer {
	return &DaemonServer{
		mediator:        mediator,
		listener:        listener,
		logger:          logger,
		clock:           shared.NewRealClock(),
		shutdownTimeout: 10 * time.Second,
		shutdownChan:    make(chan os.Signal, 1),
		done:            make(chan struct{}),
	}
}

// SetRefreshRunner attaches a background refresh runner, started with the server
func (s *DaemonServer) SetRefreshRunner(runner *RefreshRunner) {
	s.runner = runner
}

// SetShutdownTimeout bounds how long Start waits for in-flight work on shutdown
func (s *DaemonServer) SetShutdownTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.shutdownTimeout = timeout
	}
}

// Start serves gRPC requests until Stop is called or a shutdown signal arrives
func (s *DaemonServer) Start() error {
	s.started = s.clock.Now()
	s.logger.Log("INFO", "Daemon server listening", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})

	go s.handleShutdown()

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	RegisterColonyServiceServer(grpcServer, newColonyServiceImpl(s))

	if s.runner != nil {
		s.runner.Start()
	}

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		s.stopRunner()
		return err
	case <-s.done:
		s.logger.Log("INFO", "Initiating graceful shutdown of gRPC server", nil)
		s.stopRunner()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(s.shutdownTimeout):
			s.logger.Log("WARNING", "Graceful shutdown timed out, forcing stop", nil)
			grpcServer.Stop()
		}
		return nil
	}
}

// Stop triggers a graceful shutdown
func (s *DaemonServer) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *DaemonServer) handleShutdown() {
	select {
	case <-s.shutdownChan:
		s.logger.Log("INFO", "Shutdown signal received, stopping daemon", nil)
		s.Stop()
	case <-s.done:
	}
}

func (s *DaemonServer) stopRunner() {
	if s.runner != nil {
		s.runner.Stop(s.shutdownTimeout)
	}
}

// requestContext attaches the daemon logger to a request context
func (s *DaemonServer) requestContext(ctx context.Context) context.Context {
	return common.WithLogger(ctx, s.logger)
}

func (s *DaemonServer) health() HealthResponse {
	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(s.clock.Now().Sub(s.started).Seconds()),
	}
	if s.runner != nil {
		resp.RefreshRunning = s.runner.Running()
		if last := s.runner.LastReport(); last != nil {
			resp.LastRefreshRun = last.RunID
		}
	}
	return resp
}

func (s *DaemonServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Log("WARNING", "gRPC call failed", map[string]interface{}{
			"method":      info.FullMethod,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
	}
	return resp, err
}
