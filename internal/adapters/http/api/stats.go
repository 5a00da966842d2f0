package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// HandleStats serves GET /stats.
func HandleStats(p StatsProvider) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		if p == nil {
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, p.GetStats())
	}
}
