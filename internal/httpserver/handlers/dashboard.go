package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/view"
)

func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := mw.SessionFrom(r.Context())
		render(d, w, r, http.StatusOK, "dashboard", view.Page{
			Title: "Dashboard",
			Data: view.Dashboard{
				Discussions: d.MemoryIndex.Count(),
				Favorites:   s.Favorites.Len(),
				LastReload:  d.MemoryIndex.GetLastReload(),
			},
		})
	}
}
