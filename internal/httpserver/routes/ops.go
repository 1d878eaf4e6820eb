package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
)

func init() { Register("ops", registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

	ops.Get(paths.Healthz, handlers.Healthz(d))
	ops.Get(paths.Readyz, handlers.Readyz(d))
	ops.Get(paths.Infra, handlers.Infra(d))
	if d.Metrics != nil {
		ops.Method("GET", paths.Metrics, d.Metrics.Handler())
	}
	ops.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post(paths.Reload, handlers.Reload(d))
}
