package mw

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/session"
	"github.com/MrSnakeDoc/agora/internal/view"
)

type (
	sessionKey struct{}
	viewerKey  struct{}
)

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached by Session, if any.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok && s != nil
}

// WithViewer returns a copy of ctx carrying the current record of the
// signed-in user.
func WithViewer(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, viewerKey{}, u)
}

// Viewer returns the signed-in user as currently listed in the directory,
// or nil.
func Viewer(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(viewerKey{}).(*domain.User); ok && u != nil {
		return u
	}
	if s, ok := SessionFrom(ctx); ok {
		return s.User
	}
	return nil
}

// Session resolves the session cookie and looks the user up again, so role
// changes apply on the next request. Requests without a valid cookie pass
// through anonymously; a session whose user left the directory is ended.
func Session(d deps.Deps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(auth.CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := d.Tokens.Decode(c.Value)
			if err != nil {
				d.Logger.Debug("ignoring session cookie", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			s, ok := d.Sessions.Get(claims.SessionID)
			if !ok || s.User.ID != claims.Subject {
				next.ServeHTTP(w, r)
				return
			}

			user, ok := d.MemoryIndex.GetUser(claims.Subject)
			if !ok {
				d.Sessions.Destroy(s.ID)
				d.Logger.Info("ending session of removed user",
					logger.String("user_id", claims.Subject),
					logger.String("session_id", s.ID))
				next.ServeHTTP(w, r)
				return
			}

			d.Sessions.Touch(s)
			ctx := WithViewer(WithSession(r.Context(), s), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession sends anonymous visitors to the login page. GET requests
// come back to where they started after signing in.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFrom(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			target := ""
			if r.Method == http.MethodGet {
				target = r.URL.RequestURI()
			}
			http.Redirect(w, r, paths.LoginHref(target), http.StatusSeeOther)
		})
	}
}

// RequireRole renders a forbidden page unless the viewer holds one of roles.
// Must run after RequireSession.
func RequireRole(d deps.Deps, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := Viewer(r.Context())
			if domain.Authorized(viewer, roles...) {
				next.ServeHTTP(w, r)
				return
			}

			d.Logger.Warn("role check failed",
				logger.String("path", r.URL.Path),
				logger.Strings("required", rolesToStrings(roles)))

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			if err := d.View.Render(w, "error", view.Page{
				Title:  "Forbidden",
				Viewer: viewer,
				Data:   "You are not allowed to view this page.",
			}); err != nil {
				d.Logger.Error("failed to render forbidden page", logger.Error(err))
			}
		})
	}
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
