// Package hello serves the plain-text greeting at the root path.
package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const (
	// Path is the only route the hello service answers.
	Path = "/"
	// Message is the exact response body.
	Message = "Hello, World!"

	contentType = "text/plain; charset=utf-8"
)

var body = []byte(Message)

// Output is written verbatim: huma does not run []byte bodies through a format.
type Output struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Register wires GET Path into api.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Return a static greeting",
		Tags:        []string{"Hello"},
	}, Handler)
}

// Handler returns the static greeting.
func Handler(_ context.Context, _ *struct{}) (*Output, error) {
	return &Output{ContentType: contentType, Body: body}, nil
}
