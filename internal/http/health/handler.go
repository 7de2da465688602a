// Package health serves the healthcheck endpoint.
package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/healthcheck-service/internal/platform/logging"
)

// Path is the only route the healthcheck service answers.
const Path = "/api/v1/healthcheck"

// LoggerName namespaces the log record emitted on every healthcheck call.
const LoggerName = "healthcheck"

const (
	statusOK       = "ok"
	messageRunning = "Service is running"
)

// Response is the payload for the health endpoint.
type Response struct {
	Status  string `json:"status" doc:"Service status" example:"ok"`
	Message string `json:"message" doc:"Human readable status" example:"Service is running"`
}

// Output is the huma response wrapper for the health endpoint.
type Output struct {
	Body Response
}

// Register wires GET Path into api.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-healthcheck",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Report service liveness",
		Tags:        []string{"Health"},
	}, Handler)
}

// Handler logs the call and returns the fixed liveness payload.
func Handler(ctx context.Context, _ *struct{}) (*Output, error) {
	logging.LoggerFromContext(ctx).Named(LoggerName).Info("health check endpoint called")
	return &Output{Body: Response{Status: statusOK, Message: messageRunning}}, nil
}
