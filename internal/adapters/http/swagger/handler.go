// Package swagger serves the OpenAPI document and a Swagger UI for it.
package swagger

import (
	"context"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Routes served by Register.
const (
	SpecPath = "/openapi.yaml"
	UIPath   = "/api-docs/"
)

// Register attaches the Swagger UI and the OpenAPI document routes to mux.
//
//	GET /openapi.yaml          -> embedded OpenAPI document
//	GET /api-docs/index.html   -> Swagger UI loading /openapi.yaml
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc(SpecPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	mux.Handle(UIPath, httpSwagger.Handler(
		httpSwagger.URL(SpecPath),
		httpSwagger.DocExpansion("list"),
	))
}
