package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/view"
)

// Landing is the public home page.
func Landing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := view.Page{}
		if r.URL.Query().Has("signedOut") {
			p.Flash = "You have been logged out."
		}
		render(d, w, r, http.StatusOK, "landing", p)
	}
}
