package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/view"
)

// LoginForm shows the sign-in form. Signed-in users go straight on.
func LoginForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("redirectTo")
		if _, ok := mw.SessionFrom(r.Context()); ok {
			http.Redirect(w, r, afterLogin(next), http.StatusSeeOther)
			return
		}
		render(d, w, r, http.StatusOK, "login", view.Page{
			Title: "Log in",
			Data:  view.LoginForm{RedirectTo: localOrEmpty(next)},
		})
	}
}

// Login checks the email and password and sets the session cookie.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		next := localOrEmpty(r.PostFormValue("redirectTo"))

		user, ok := d.MemoryIndex.FindUserByEmail(email)
		hash := ""
		if ok {
			hash = user.PasswordHash
		}
		if !auth.CheckPassword(hash, password) {
			d.Logger.Info("login rejected",
				logger.String("email", email),
				logger.Bool("known_email", ok))
			render(d, w, r, http.StatusUnauthorized, "login", view.Page{
				Title: "Log in",
				Data: view.LoginForm{
					Email:      email,
					RedirectTo: next,
					Error:      "Invalid email or password.",
				},
			})
			return
		}

		startSession(d, w, r, user, next)
	}
}

// RegisterForm shows the sign-up form. Signed-in users go straight on.
func RegisterForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("redirectTo")
		if _, ok := mw.SessionFrom(r.Context()); ok {
			http.Redirect(w, r, afterLogin(next), http.StatusSeeOther)
			return
		}
		render(d, w, r, http.StatusOK, "register", view.Page{
			Title: "Register",
			Data:  view.RegisterForm{RedirectTo: localOrEmpty(next)},
		})
	}
}

// Register creates a MEMBER account and signs it in.
func Register(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := view.RegisterForm{
			FirstName:  strings.TrimSpace(r.PostFormValue("firstName")),
			LastName:   strings.TrimSpace(r.PostFormValue("lastName")),
			Email:      strings.TrimSpace(r.PostFormValue("email")),
			RedirectTo: localOrEmpty(r.PostFormValue("redirectTo")),
		}
		reject := func(status int, msg string) {
			form.Error = msg
			render(d, w, r, status, "register", view.Page{Title: "Register", Data: form})
		}

		if form.FirstName == "" || form.LastName == "" {
			reject(http.StatusUnprocessableEntity, "First and last name are required.")
			return
		}
		addr, err := mail.ParseAddress(form.Email)
		if err != nil || addr.Address != form.Email {
			reject(http.StatusUnprocessableEntity, "Enter a valid email address.")
			return
		}

		hash, err := auth.HashPassword(r.PostFormValue("password"), d.PasswordCost)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			reject(http.StatusUnprocessableEntity, "Password must be at least 8 characters.")
			return
		}
		if err != nil {
			d.Logger.Error("failed to hash password", logger.Error(err))
			renderError(d, w, r, http.StatusInternalServerError, "Could not create your account, please retry.")
			return
		}

		user := &domain.User{
			ID:           "u-" + strings.ToLower(ulid.Make().String()),
			FirstName:    form.FirstName,
			LastName:     form.LastName,
			Email:        form.Email,
			Role:         domain.RoleMember,
			CreatedAt:    d.Now().UTC(),
			PasswordHash: hash,
			Source:       domain.SourceRegistration,
		}
		if err := d.MemoryIndex.RegisterUser(user); err != nil {
			reject(http.StatusConflict, "An account with this email already exists.")
			return
		}

		if d.RedisStore != nil {
			if err := d.RedisStore.SaveUser(r.Context(), user); err != nil {
				d.Logger.Warn("failed to save user to redis",
					logger.String("user_id", user.ID),
					logger.Error(err))
			}
		}

		d.Logger.Info("user registered", logger.String("user_id", user.ID))
		startSession(d, w, r, user, form.RedirectTo)
	}
}

// startSession replaces any current session with a new one for user and
// redirects to next.
func startSession(d deps.Deps, w http.ResponseWriter, r *http.Request, user *domain.User, next string) {
	if old, ok := mw.SessionFrom(r.Context()); ok {
		d.Sessions.Destroy(old.ID)
	}
	s := d.Sessions.Create(user)
	token, err := d.Tokens.Encode(s.ID, user.ID)
	if err != nil {
		d.Sessions.Destroy(s.ID)
		d.Logger.Error("failed to issue session token", logger.Error(err))
		renderError(d, w, r, http.StatusInternalServerError, "Could not sign you in, please retry.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(d.Tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   d.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	d.Logger.Info("user signed in",
		logger.String("user_id", user.ID),
		logger.String("session_id", s.ID))
	http.Redirect(w, r, afterLogin(next), http.StatusSeeOther)
}

// Logout ends the session and clears the cookie.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s, ok := mw.SessionFrom(r.Context()); ok {
			d.Sessions.Destroy(s.ID)
			d.Logger.Info("user signed out", logger.String("user_id", s.User.ID))
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, paths.Home+"?signedOut=1", http.StatusSeeOther)
	}
}

func afterLogin(next string) string {
	if paths.IsLocal(next) {
		return next
	}
	return paths.App
}

func localOrEmpty(target string) string {
	if paths.IsLocal(target) {
		return target
	}
	return ""
}
