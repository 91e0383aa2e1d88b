package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Services int  `json:"services"`
}

// Readyz reports ready once a snapshot has been loaded into the index.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.MemoryIndex.Loaded()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, d.Logger, status, readyzResponse{
			Ready:    ready,
			Services: d.MemoryIndex.Count(),
		})
	}
}
