package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
)

func init() { Register("public", registerPublic) }

func registerPublic(r chi.Router, d deps.Deps) {
	r.Get(paths.Home, handlers.Landing(d))
	r.Get(paths.Login, handlers.LoginForm(d))
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:        10,
		RefillPerMin: 10,
		IdleTTL:      15 * time.Minute,
		TrustProxy:   d.TrustProxy,
	}))
	limited.Post(paths.Login, handlers.Login(d))
	r.Get(paths.Register, handlers.RegisterForm(d))
	limited.Post(paths.Register, handlers.Register(d))
	r.Post(paths.Logout, handlers.Logout(d))
}
