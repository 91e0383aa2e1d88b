package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
)

// Config returns the current services, extracting them on first use.
// ?format=yaml switches the encoding.
func Config(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := d.Catalog.GetCurrentServices(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if wantsYAML(r) {
			writeYAML(w, d.Logger, http.StatusOK, services)
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, services)
	}
}
