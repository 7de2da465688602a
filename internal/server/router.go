package server

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/healthcheck-service/internal/platform/logging"
	appmiddleware "github.com/janisto/healthcheck-service/internal/platform/middleware"
	"github.com/janisto/healthcheck-service/internal/platform/respond"
)

// compactJSON writes unescaped JSON without the trailing newline json.Encoder appends.
var compactJSON = huma.Format{
	Marshal: func(w io.Writer, v any) error {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return err
		}
		_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
		return err
	},
	Unmarshal: json.Unmarshal,
}

// NewRouter builds the chi router with the shared middleware and a huma API,
// then lets each registrar add its routes. Unmatched requests fall through to
// chi's default 404 and 405 handlers.
func NewRouter(cfg Config, registrars ...func(huma.API)) chi.Router {
	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		logging.RequestLogger(),
		logging.AccessLogger(),
		respond.Recoverer(),
	)

	api := humachi.New(router, apiConfig(cfg))
	for _, register := range registrars {
		register(api)
	}
	return router
}

// apiConfig strips everything from huma's defaults that would add routes or
// alter response bodies: the docs, OpenAPI and schema endpoints and the
// $schema link transformer. JSON is the only format, so Accept never changes
// the body.
func apiConfig(cfg Config) huma.Config {
	hc := huma.DefaultConfig(cfg.Title, cfg.Version)
	hc.OpenAPIPath = ""
	hc.DocsPath = ""
	hc.SchemasPath = ""
	hc.CreateHooks = nil
	hc.Transformers = nil
	hc.Formats = map[string]huma.Format{"application/json": compactJSON}
	hc.DefaultFormat = "application/json"
	return hc
}
