package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/view"
)

// Users lists the board directory. Admin only.
func Users(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, r, http.StatusOK, "users", view.Page{
			Title: "Users",
			Data:  d.MemoryIndex.Users(),
		})
	}
}

// Profile shows the signed-in user.
func Profile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, r, http.StatusOK, "profile", view.Page{Title: "Profile"})
	}
}
