// Package server binds the listener and serves a router until the process is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/healthcheck-service/internal/platform/logging"
)

// DefaultAddr is the fixed loopback address both services listen on.
const DefaultAddr = "127.0.0.1:3000"

const shutdownTimeout = 10 * time.Second

// ErrBind reports that the listener could not be bound. It is the only
// startup failure and is never retried.
var ErrBind = errors.New("listener bind failed")

// Config describes one service instance.
type Config struct {
	Addr    string
	Title   string
	Version string
}

// DefaultConfig returns a Config bound to DefaultAddr.
func DefaultConfig(title, version string) Config {
	return Config{Addr: DefaultAddr, Title: title, Version: version}
}

// Listen binds a TCP listener on addr. Failures wrap ErrBind.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBind, addr, err)
	}
	return ln, nil
}

func newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// Serve handles requests on ln until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout. It takes ownership of ln.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := newHTTPServer(handler)

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve %s: %w", ln.Addr(), err)
		}
		return nil
	case <-ctx.Done():
		logging.LogInfo(ctx, "shutdown requested", zap.String("addr", ln.Addr().String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", ln.Addr(), err)
	}
	return <-serveErr
}

// Run binds cfg.Addr, announces the address on out and serves handler until
// ctx is cancelled.
func Run(ctx context.Context, cfg Config, handler http.Handler, out io.Writer) error {
	ln, err := Listen(cfg.Addr)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Listening on http://%s\n", ln.Addr()); err != nil {
		_ = ln.Close()
		return fmt.Errorf("announce listener: %w", err)
	}
	logging.LogInfo(ctx, "server listening", zap.String("addr", ln.Addr().String()),
		zap.String("service", cfg.Title), zap.String("version", cfg.Version))
	return Serve(ctx, ln, handler)
}
