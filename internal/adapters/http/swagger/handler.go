// Package swagger serves the ghost store's OpenAPI document.
package swagger

import (
	_ "embed"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte

// Path is where the document is served.
const Path = "/openapi.yaml"

// Register attaches GET /openapi.yaml to mux.
func Register(mux *httprouter.Router) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.GET(Path, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}
