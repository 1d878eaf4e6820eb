package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
)

func init() { Register("app", registerApp, mw.RequireSession()) }

func registerApp(r chi.Router, d deps.Deps) {
	r.Get(paths.App, handlers.Dashboard(d))
	r.Get(paths.Discussions, handlers.Discussions(d))
	r.Get(paths.Discussion, handlers.Discussion(d))
	r.Post(paths.Favorite, handlers.ToggleFavorite(d))
	r.Post(paths.Prefetch, handlers.Prefetch(d))
	r.Post(paths.FavoritesReset, handlers.ResetFavorites(d))
	r.Get(paths.FavoritesFeed, handlers.FavoritesStream(d))
	r.Get(paths.Profile, handlers.Profile(d))

	admin := r.With(mw.RequireRole(d, domain.RoleAdmin))
	admin.Post(paths.Delete, handlers.DeleteDiscussion(d))
	admin.Get(paths.Users, handlers.Users(d))
}
