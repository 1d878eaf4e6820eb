package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/httpserver"
	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/index"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/metrics"
	"github.com/MrSnakeDoc/agora/internal/querycache"
	"github.com/MrSnakeDoc/agora/internal/session"
	"github.com/MrSnakeDoc/agora/internal/view"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	memberPassword = "member-password"
	adminPassword  = "admin-password"
)

var base = time.Date(2026, time.January, 2, 15, 4, 0, 0, time.UTC)

type fixture struct {
	d       deps.Deps
	router  http.Handler
	backend *querycache.MemoryBackend
	admin   *domain.User
	member  *domain.User
}

// newFixture builds the full router over a three-discussion board with a
// page size of two. With loaded false the board has not arrived yet.
func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()

	admin := &domain.User{ID: "u-admin", FirstName: "Ada", LastName: "Admin", Email: "ada@example.com", Role: domain.RoleAdmin, CreatedAt: base, PasswordHash: mustHash(t, adminPassword)}
	member := &domain.User{ID: "u-member", FirstName: "Mel", LastName: "Member", Email: "mel@example.com", Role: domain.RoleMember, CreatedAt: base, PasswordHash: mustHash(t, memberPassword)}

	idx := index.NewMemoryIndex()
	idx.UpdateUsers([]*domain.User{admin, member})
	if loaded {
		idx.UpdateDiscussions([]*domain.Discussion{
			{ID: "d1", Title: "Roadmap", Body: "Next quarter", AuthorID: "u-admin", CreatedAt: base.Add(2 * time.Hour)},
			{ID: "d2", Title: "Retro", AuthorID: "u-member", CreatedAt: base.Add(time.Hour)},
			{ID: "d3", Title: "Onboarding", CreatedAt: base},
		})
	}

	m := metrics.New()
	backend := querycache.NewMemoryBackend()
	d := deps.Deps{
		Logger:         logger.Nop(),
		StartTime:      base,
		Version:        "test",
		TimeNow:        func() time.Time { return base.Add(time.Minute) },
		RequestTimeout: 5 * time.Second,
		PageSize:       2,
		PasswordCost:   bcrypt.MinCost,
		MemoryIndex:    idx,
		Sessions:       session.NewManager(time.Hour, m),
		Tokens:         auth.NewCodec(testSecret, time.Hour),
		Cache:          querycache.New(backend, time.Minute, m, logger.Nop()),
		Metrics:        m,
		View:           view.MustNew(),
		ReloadTrigger:  make(chan struct{}, 1),
	}

	return &fixture{
		d:       d,
		router:  httpserver.NewRouter(d),
		backend: backend,
		admin:   admin,
		member:  member,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return h
}

func (f *fixture) signIn(u *domain.User) *session.Session {
	return f.d.Sessions.Create(u)
}

func (f *fixture) cookie(t *testing.T, s *session.Session) *http.Cookie {
	t.Helper()
	tok, err := f.d.Tokens.Encode(s.ID, s.User.ID)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: tok}
}

// do sends a request through the router. A non-nil form is sent urlencoded.
func (f *fixture) do(t *testing.T, method, target string, form url.Values, s *session.Session) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if s != nil {
		req.AddCookie(f.cookie(t, s))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse response: %v", err)
	}
	return doc
}

func rowIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("tr[data-discussion-id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-discussion-id")
		ids = append(ids, id)
	})
	return ids
}
