package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/view"
)

// render writes a full HTML page. The viewer is filled from the request
// when the caller left it empty.
func render(d deps.Deps, w http.ResponseWriter, r *http.Request, status int, name string, p view.Page) {
	if p.Viewer == nil {
		p.Viewer = mw.Viewer(r.Context())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := d.View.Render(w, name, p); err != nil {
		d.Logger.Error("failed to render page",
			logger.String("page", name),
			logger.Error(err))
	}
}

func renderError(d deps.Deps, w http.ResponseWriter, r *http.Request, status int, msg string) {
	render(d, w, r, status, "error", view.Page{Title: http.StatusText(status), Data: msg})
}

// NotFound renders the not-found page for any unmatched route.
func NotFound(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(d, w, r, http.StatusNotFound, "notfound", view.Page{Title: "Not Found"})
	}
}

// redirectBack answers a form post with 303 to the local "return" value,
// or to fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.PostFormValue("return")
	if !paths.IsLocal(target) {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
