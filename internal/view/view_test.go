package view

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/agora/internal/domain"
)

var favoriteName = regexp.MustCompile(`(?i)favorite`)

var (
	admin  = &domain.User{ID: "u1", FirstName: "Ada", Role: domain.RoleAdmin}
	member = &domain.User{ID: "u2", FirstName: "Bob", Role: domain.RoleMember}
)

func renderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

func sampleDiscussions() []*domain.Discussion {
	at := time.Date(2026, time.January, 2, 15, 4, 0, 0, time.UTC)
	return []*domain.Discussion{
		{ID: "d1", Title: "First", CreatedAt: at},
		{ID: "d2", Title: "Second", CreatedAt: at.Add(-time.Hour)},
	}
}

func renderList(t *testing.T, s ListState) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	if err := renderer(t).DiscussionsList(&buf, s); err != nil {
		t.Fatalf("DiscussionsList() error = %v", err)
	}
	return parse(t, buf.String())
}

func TestFavoriteButton(t *testing.T) {
	tests := []struct {
		name       string
		isFavorite bool
		want       string
		notWant    string
	}{
		{name: "favorited", isFavorite: true, want: "favorite-active", notWant: "favorite-inactive"},
		{name: "not favorited", isFavorite: false, want: "favorite-inactive", notWant: "favorite-active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			props := FavoriteButtonProps{IsFavorite: tt.isFavorite, Action: "/app/discussions/d1/favorite"}
			if err := renderer(t).FavoriteButton(&buf, props); err != nil {
				t.Fatalf("FavoriteButton() error = %v", err)
			}
			doc := parse(t, buf.String())

			buttons := doc.Find("button")
			if buttons.Length() != 1 {
				t.Fatalf("found %d buttons, want 1", buttons.Length())
			}
			name, _ := buttons.Attr("aria-label")
			if !favoriteName.MatchString(name) {
				t.Errorf("accessible name %q does not mention favorite", name)
			}
			if !buttons.HasClass(tt.want) || buttons.HasClass(tt.notWant) {
				t.Errorf("class = %q, want %s and not %s", buttons.AttrOr("class", ""), tt.want, tt.notWant)
			}
			if action := doc.Find("form").AttrOr("action", ""); action != props.Action {
				t.Errorf("form action = %q, want %q", action, props.Action)
			}
		})
	}
}

func TestDiscussionsListLoading(t *testing.T) {
	doc := renderList(t, ListState{Loading: true, Discussions: sampleDiscussions(), FavoriteIDs: []string{"d1"}})

	if doc.Find(`[role="progressbar"]`).Length() != 1 {
		t.Error("loading state should render a progress indicator")
	}
	if n := doc.Find("tr").Length(); n != 0 {
		t.Errorf("loading state rendered %d rows", n)
	}
	if n := doc.Find("button").Length(); n != 0 {
		t.Errorf("loading state rendered %d buttons", n)
	}
}

func TestDiscussionsListRowTreatment(t *testing.T) {
	doc := renderList(t, ListState{
		Discussions: sampleDiscussions(),
		Meta:        domain.PageMeta{Page: 1, TotalPages: 1, Total: 2},
		FavoriteIDs: []string{"d1"},
		Viewer:      member,
	})

	rows := doc.Find("tbody tr")
	if rows.Length() != 2 {
		t.Fatalf("rendered %d rows, want 2", rows.Length())
	}

	tests := []struct {
		id       string
		favorite bool
	}{
		{id: "d1", favorite: true},
		{id: "d2", favorite: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			row := doc.Find(`tr[data-discussion-id="` + tt.id + `"]`)
			if row.HasClass("row-favorite") != tt.favorite || row.HasClass("row-default") == tt.favorite {
				t.Errorf("row class = %q, favorite = %v", row.AttrOr("class", ""), tt.favorite)
			}

			btn := row.Find("button[aria-label]")
			if btn.HasClass("favorite-active") != tt.favorite {
				t.Errorf("button class = %q", btn.AttrOr("class", ""))
			}

			action := row.Find("form.favorite-form").AttrOr("action", "")
			if want := "/app/discussions/" + tt.id + "/favorite"; action != want {
				t.Errorf("toggle action = %q, want %q", action, want)
			}
		})
	}
}

func TestDiscussionsListCells(t *testing.T) {
	doc := renderList(t, ListState{
		Discussions: sampleDiscussions()[:1],
		Meta:        domain.PageMeta{Page: 1, TotalPages: 1, Total: 1},
	})

	row := doc.Find(`tr[data-discussion-id="d1"]`)
	if got := row.Find("time").Text(); got != "January 2, 2026 3:04 PM" {
		t.Errorf("date cell = %q", got)
	}
	link := row.Find("a")
	if link.Text() != "View" || link.AttrOr("href", "") != "/app/discussions/d1" {
		t.Errorf("view link = %q -> %q", link.Text(), link.AttrOr("href", ""))
	}
	if link.AttrOr("data-prefetch", "") != "/app/discussions/d1/prefetch" {
		t.Error("view link should carry its prefetch endpoint")
	}
}

func TestDiscussionsListEmpty(t *testing.T) {
	doc := renderList(t, ListState{Meta: domain.PageMeta{Page: 1, TotalPages: 1}})

	if doc.Find("tbody").Length() != 1 {
		t.Error("empty list should still render its row container")
	}
	if n := doc.Find("tbody tr").Length(); n != 0 {
		t.Errorf("empty list rendered %d rows", n)
	}
}

func TestDiscussionsListDeleteGate(t *testing.T) {
	tests := []struct {
		name   string
		viewer *domain.User
		want   int
	}{
		{name: "admin", viewer: admin, want: 2},
		{name: "member", viewer: member, want: 0},
		{name: "anonymous", viewer: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := renderList(t, ListState{Discussions: sampleDiscussions(), Viewer: tt.viewer})
			if n := doc.Find(`form[action$="/delete"]`).Length(); n != tt.want {
				t.Errorf("delete controls = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestDiscussionsListEscapesTitles(t *testing.T) {
	var buf bytes.Buffer
	err := renderer(t).DiscussionsList(&buf, ListState{
		Discussions: []*domain.Discussion{{ID: "x", Title: `<script>alert(1)</script>`}},
	})
	if err != nil {
		t.Fatalf("DiscussionsList() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)") {
		t.Error("title was not escaped")
	}
}

func TestDiscussionsListPagination(t *testing.T) {
	doc := renderList(t, ListState{Meta: domain.PageMeta{Page: 2, TotalPages: 3, Total: 25}})

	if href := doc.Find(`a[rel="prev"]`).AttrOr("href", ""); href != "/app/discussions" {
		t.Errorf("prev = %q", href)
	}
	if href := doc.Find(`a[rel="next"]`).AttrOr("href", ""); href != "/app/discussions?page=3" {
		t.Errorf("next = %q", href)
	}
	if feed := doc.Find("table").AttrOr("data-feed", ""); feed != "/app/favorites/stream?page=2" {
		t.Errorf("feed = %q", feed)
	}
}

func TestDiscussionsBody(t *testing.T) {
	var buf bytes.Buffer
	err := renderer(t).DiscussionsBody(&buf, ListState{Discussions: sampleDiscussions(), FavoriteIDs: []string{"d2"}})
	if err != nil {
		t.Fatalf("DiscussionsBody() error = %v", err)
	}

	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, `<tbody id="discussions-body">`) || !strings.HasSuffix(out, "</tbody>") {
		t.Fatalf("body fragment = %q", out)
	}

	doc := parse(t, "<table>"+out+"</table>")
	if !doc.Find(`tr[data-discussion-id="d2"]`).HasClass("row-favorite") {
		t.Error("d2 should be highlighted")
	}
}

func TestPagesRender(t *testing.T) {
	list := ListState{Discussions: sampleDiscussions(), Meta: domain.PageMeta{Page: 1, TotalPages: 1, Total: 2}, Viewer: admin}

	tests := []struct {
		page string
		data Page
		want string
	}{
		{page: "landing", data: Page{}, want: "Get started"},
		{page: "login", data: Page{Title: "Log in", Data: LoginForm{Error: "Unknown email"}}, want: "Unknown email"},
		{page: "register", data: Page{Title: "Register", Data: RegisterForm{Email: "hana@example.com", Error: "An account with this email already exists."}}, want: "An account with this email already exists."},
		{page: "dashboard", data: Page{Viewer: admin, Data: Dashboard{Discussions: 2, Favorites: 1}}, want: "Welcome"},
		{page: "discussions", data: Page{Viewer: admin, Data: DiscussionsPage{List: list}}, want: "Clear favorites"},
		{page: "discussion", data: Page{Viewer: admin, Data: DiscussionDetail{
			Discussion: &domain.Discussion{ID: "d1", Title: "First", Author: member},
			Favorite:   FavoriteButtonProps{IsFavorite: true, Action: "/app/discussions/d1/favorite"},
		}}, want: "by Bob"},
		{page: "users", data: Page{Viewer: admin, Data: []*domain.User{admin, member}}, want: "Ada"},
		{page: "profile", data: Page{Viewer: member}, want: "User Information"},
		{page: "notfound", data: Page{}, want: "404"},
		{page: "error", data: Page{Data: "boom"}, want: "boom"},
	}

	r := renderer(t)
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(&buf, tt.page, tt.data); err != nil {
				t.Fatalf("Render(%s) error = %v", tt.page, err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Render(%s) missing %q", tt.page, tt.want)
			}
		})
	}

	if err := r.Render(&bytes.Buffer{}, "missing", Page{}); err == nil {
		t.Error("Render() should fail for an unknown page")
	}
}

func TestLayoutNavigationByRole(t *testing.T) {
	r := renderer(t)
	for _, tt := range []struct {
		viewer *domain.User
		users  bool
	}{
		{viewer: admin, users: true},
		{viewer: member, users: false},
	} {
		var buf bytes.Buffer
		if err := r.Render(&buf, "profile", Page{Viewer: tt.viewer}); err != nil {
			t.Fatal(err)
		}
		doc := parse(t, buf.String())
		if got := doc.Find(`nav a[href="/app/users"]`).Length() == 1; got != tt.users {
			t.Errorf("%s sees users link = %v, want %v", tt.viewer.Role, got, tt.users)
		}
	}
}
