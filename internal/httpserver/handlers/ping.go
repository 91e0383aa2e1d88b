package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
)

// Ping probes every upstream of the current snapshot. It never extracts:
// without a snapshot it answers 503.
func Ping(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := d.Catalog.Ping(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, results)
	}
}
