// Command healthcheck serves GET /api/v1/healthcheck on 127.0.0.1:3000.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/janisto/healthcheck-service/internal/http/health"
	"github.com/janisto/healthcheck-service/internal/platform/logging"
	"github.com/janisto/healthcheck-service/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const serviceTitle = "Healthcheck Service"

func newRouter(cfg server.Config) chi.Router {
	return server.NewRouter(cfg, health.Register)
}

// run serves until SIGINT or SIGTERM arrives or parent is cancelled.
func run(parent context.Context, cfg server.Config, out io.Writer) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, cfg, newRouter(cfg), out)
}

func main() {
	defer func() {
		if err := logging.Sync(); err != nil {
			logging.LogError(context.Background(), "logger sync error", err)
		}
	}()
	_ = logging.ReportInit(context.Background())
	logging.LogInfo(context.Background(), "configured logger")

	ctx := context.Background()
	cfg := server.DefaultConfig(serviceTitle, Version)
	if err := run(ctx, cfg, os.Stdout); err != nil {
		msg := "server error"
		if errors.Is(err, server.ErrBind) {
			msg = "listen failed"
		}
		logging.LogFatal(ctx, msg, err, zap.String("addr", cfg.Addr))
	}
	logging.LogInfo(ctx, "server exited")
}
