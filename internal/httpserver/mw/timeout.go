package mw

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Timeout applies chi's request deadline to every path except the
// long-lived ones listed in exempt.
func Timeout(d time.Duration, exempt ...string) func(http.Handler) http.Handler {
	limited := middleware.Timeout(d)
	return func(next http.Handler) http.Handler {
		withDeadline := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 || slices.Contains(exempt, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			withDeadline.ServeHTTP(w, r)
		})
	}
}
