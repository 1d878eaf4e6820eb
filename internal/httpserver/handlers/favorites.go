package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
	"github.com/MrSnakeDoc/agora/internal/logger"
)

// ToggleFavorite flips one discussion in the session favorites, then sends
// the browser back to the page it came from.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := mw.SessionFrom(r.Context())
		id := chi.URLParam(r, "id")

		added := s.Favorites.Toggle(id)
		d.Metrics.FavoriteToggled(added)

		d.Logger.Debug("favorite toggled",
			logger.String("session_id", s.ID),
			logger.String("discussion_id", id),
			logger.Bool("favorite", added))
		redirectBack(w, r, paths.Discussions)
	}
}

// ResetFavorites clears the session favorites.
func ResetFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := mw.SessionFrom(r.Context())

		s.Favorites.Reset()
		d.Metrics.FavoritesReset()

		d.Logger.Debug("favorites reset", logger.String("session_id", s.ID))
		redirectBack(w, r, paths.Discussions)
	}
}
