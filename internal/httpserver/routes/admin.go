package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/mw"
	"github.com/MrSnakeDoc/caddyboard/internal/metrics"
)

func init() { Register(registerAdmin) }

// registerAdmin wires the endpoints that change state or expose internals.
func registerAdmin(r chi.Router, d deps.Deps) {
	admin := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))

	admin.Post("/reload", handlers.Reload(d))
	admin.Post("/api/refresh", handlers.Refresh(d))
	admin.Get("/infra", handlers.Infra(d))
	if d.Gatherer != nil {
		admin.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}
}
