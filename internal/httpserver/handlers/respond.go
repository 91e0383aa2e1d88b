package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func writeYAML(w http.ResponseWriter, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
	_ = enc.Close()
}

// writeError maps catalog errors to a status code: a missing snapshot is a
// 503, anything else a 500.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	if errors.Is(err, domain.ErrSnapshotUnavailable) {
		writeJSON(w, log, http.StatusServiceUnavailable, errorResponse{Error: domain.ErrSnapshotUnavailable.Error()})
		return
	}
	log.Error("request failed", logger.Error(err))
	writeJSON(w, log, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func wantsYAML(r *http.Request) bool {
	switch r.URL.Query().Get("format") {
	case "yaml", "yml":
		return true
	}
	return false
}
