// Package view renders the HTML of the app with html/template.
//
// Components (favorite button, discussions list, spinner, pagination) are
// partials usable on their own; pages wrap them in the shared layout.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
)

//go:embed templates
var templatesFS embed.FS

// FavoriteButtonProps drives the favorite toggle control. Activation posts
// the enclosing form to Action; ReturnTo is where the app sends the user back.
type FavoriteButtonProps struct {
	IsFavorite bool
	Action     string
	ReturnTo   string
}

// ListState is everything the discussions list renders from.
type ListState struct {
	Loading     bool
	Discussions []*domain.Discussion
	Meta        domain.PageMeta
	FavoriteIDs []string
	Viewer      *domain.User
}

// IsFavorite reports whether id belongs to the favorite set of the state.
func (s ListState) IsFavorite(id string) bool {
	return slices.Contains(s.FavoriteIDs, id)
}

// Page is the data of a full page.
type Page struct {
	Title  string
	Viewer *domain.User
	Flash  string
	Data   any
}

// LoginForm is the data of the login page.
type LoginForm struct {
	Email      string
	RedirectTo string
	Error      string
}

// RegisterForm is the data of the sign-up page.
type RegisterForm struct {
	FirstName  string
	LastName   string
	Email      string
	RedirectTo string
	Error      string
}

// Dashboard is the data of the dashboard page.
type Dashboard struct {
	Discussions int
	Favorites   int
	LastReload  time.Time
}

// DiscussionsPage is the data of the listing page.
type DiscussionsPage struct {
	List ListState
}

// DiscussionDetail is the data of the detail page.
type DiscussionDetail struct {
	Discussion *domain.Discussion
	Favorite   FavoriteButtonProps
}

// Renderer holds the parsed templates.
type Renderer struct {
	components *template.Template
	pages      map[string]*template.Template
}

// New parses every embedded template.
func New() (*Renderer, error) {
	base, err := template.New("").Funcs(funcs()).ParseFS(templatesFS, "templates/partials/*.html", "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	r := &Renderer{components: base, pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		page, err := clone.ParseFS(templatesFS, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = page
	}

	return r, nil
}

// MustNew is New for wiring code; templates are embedded so failure is a
// programming error.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes a full page. Output is buffered so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return execute(w, t, "layout", p)
}

// FavoriteButton writes the toggle control alone.
func (r *Renderer) FavoriteButton(w io.Writer, props FavoriteButtonProps) error {
	return execute(w, r.components, "favorite_button", props)
}

// DiscussionsList writes the list component: a spinner while loading,
// otherwise the table and its pagination.
func (r *Renderer) DiscussionsList(w io.Writer, s ListState) error {
	return execute(w, r.components, "discussions_list", s)
}

// DiscussionsBody writes only the <tbody> of the list, used for live updates.
func (r *Renderer) DiscussionsBody(w io.Writer, s ListState) error {
	return execute(w, r.components, "discussions_body", s)
}

func execute(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": domain.FormatDate,
		"isoDate":    func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"authorized": func(u *domain.User, roles ...string) bool {
			rs := make([]domain.Role, len(roles))
			for i, r := range roles {
				rs[i] = domain.Role(r)
			}
			return domain.Authorized(u, rs...)
		},
		"favoriteProps": func(isFavorite bool, id string, page int) FavoriteButtonProps {
			return FavoriteButtonProps{
				IsFavorite: isFavorite,
				Action:     paths.FavoriteHref(id),
				ReturnTo:   paths.DiscussionsPageHref(page),
			}
		},
		"discussionHref": paths.DiscussionHref,
		"prefetchHref":   paths.PrefetchHref,
		"deleteHref":     paths.DeleteHref,
		"pageHref":       paths.DiscussionsPageHref,
		"feedHref":       paths.FavoritesFeedHref,
		"add":            func(a, b int) int { return a + b },
		"paths": func() map[string]string {
			return map[string]string{
				"Home":           paths.Home,
				"Login":          paths.Login,
				"Register":       paths.Register,
				"Logout":         paths.Logout,
				"App":            paths.App,
				"Discussions":    paths.Discussions,
				"FavoritesReset": paths.FavoritesReset,
				"Users":          paths.Users,
				"Profile":        paths.Profile,
			}
		},
	}
}
