package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/okian/flappyghost/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandleHealth serves GET /healthz as the Prometheus exposition of the
// process registry.
func HandleHealth() httprouter.Handle {
	h := promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}
