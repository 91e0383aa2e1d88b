package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

type refreshResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []domain.Service `json:"data"`
}

// Refresh re-extracts the Caddyfile synchronously and returns the new list.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := d.Catalog.Refresh(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		d.Logger.Info("services refreshed via endpoint",
			logger.Int("count", len(services)),
			logger.String("remote_ip", r.RemoteAddr))

		writeJSON(w, d.Logger, http.StatusOK, refreshResponse{
			Success: true,
			Count:   len(services),
			Data:    services,
		})
	}
}
