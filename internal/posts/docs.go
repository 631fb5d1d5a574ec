package posts

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// OpenAPI is the OpenAPI 3 description of the routes mounted by Handler.
//
//go:embed openapi.json
var OpenAPI []byte

// Docs serves the API description at GET /docs.
type Docs struct{}

// Routes implements server.Handler.
func (Docs) Routes(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(OpenAPI)
	})
}
