package server

import (
	_ "embed"
	"fmt"
	"net/http"
)

const (
	openAPIPath = "/openapi.yaml"
	docsPath    = "/docs"
)

// openAPIDoc describes the benchmark records and extraction endpoints
//
//go:embed openapi.yaml
var openAPIDoc []byte

// redocPage renders the API reference, with the records and extract
// schemas expanded on their successful responses
var redocPage = fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>fxbench API</title>
  </head>
  <body>
    <redoc spec-url="%s" expand-responses="200" required-props-first="true" hide-hostname="true"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`, openAPIPath)

// OpenAPI serves the embedded API description
func (s *Server) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(openAPIDoc) //nolint:errcheck // Fine to ignore
}

// Redoc serves the API reference page
func (s *Server) Redoc(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	_, _ = w.Write([]byte(redocPage)) //nolint:errcheck // Fine to ignore
}
