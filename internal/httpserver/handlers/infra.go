package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ServicesLoaded *int   `json:"services_loaded,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	StoredServices *int   `json:"stored_services,omitempty"`
	LastWrite      string `json:"last_write,omitempty"`
	Path           string `json:"path,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the Caddyfile source, the snapshot and its
// backend.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servicesCount := d.MemoryIndex.Count()
		lastReload := d.MemoryIndex.GetLastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		snap := componentStatus{
			OK:             d.MemoryIndex.Loaded(),
			ServicesLoaded: &servicesCount,
			LastReload:     lastReloadStr,
			Mode:           d.SnapshotBackend,
		}
		if d.SnapshotMeta != nil {
			addStoredMeta(r.Context(), d, &snap)
		}

		components := map[string]componentStatus{
			"caddyfile": checkCaddyfile(d.CaddyfilePath),
			"snapshot":  snap,
		}
		if d.RedisClient != nil {
			components["redis"] = checkRedis(r.Context(), d)
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if snap, ok := components["snapshot"]; ok && !snap.OK {
		return "critical" // nothing to serve
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkCaddyfile(path string) componentStatus {
	st := componentStatus{Path: path}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		st.Error = err.Error()
	case info.IsDir():
		st.Error = "is a directory"
	default:
		st.OK = true
	}
	return st
}

// addStoredMeta reports the last write seen by the shared store, which may
// come from another instance.
func addStoredMeta(parent context.Context, d deps.Deps, st *componentStatus) {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	meta, ok, err := d.SnapshotMeta.Meta(ctx)
	switch {
	case err != nil:
		st.Error = err.Error()
	case !ok:
		st.LastWrite = "never"
	default:
		count := meta.Count
		st.StoredServices = &count
		st.LastWrite = meta.UpdatedAt.Format("2006-01-02 15:04:05")
	}
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
