package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

// registerAPI wires the read side of the service catalog.
func registerAPI(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	api.Get("/api/config", handlers.Config(d))
	api.Get("/api/search", handlers.Search(d))
	api.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:         d.PingRateBurst,
		RefillPerMin:  d.PingRatePerMin,
		MaxEntries:    10000,
		SweepInterval: time.Minute,
		IdleTTL:       15 * time.Minute,
		TrustProxy:    d.TrustProxy,
	})).Get("/api/ping", handlers.Ping(d))
}
