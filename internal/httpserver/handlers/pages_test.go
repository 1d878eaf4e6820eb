package handlers_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestLanding(t *testing.T) {
	f := newFixture(t, true)

	tests := []struct {
		name     string
		signedIn bool
		wantLink string
	}{
		{name: "anonymous", wantLink: "/auth/login"},
		{name: "signed in", signedIn: true, wantLink: "/app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := f.signIn(f.member)
			if !tt.signedIn {
				s = nil
			}
			doc := parse(t, f.do(t, http.MethodGet, "/", nil, s))
			if doc.Find(`section a[href="`+tt.wantLink+`"]`).Length() != 1 {
				t.Errorf("landing should link to %s", tt.wantLink)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, true)
	s := f.signIn(f.member)
	s.Favorites.Toggle("d1")

	rec := f.do(t, http.MethodGet, "/app", nil, s)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := parse(t, rec).Find("main").Text()
	for _, want := range []string{"Welcome Mel Member", "MEMBER", "3 discussions on the board", "1 favorites in this session"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestUsersAdminOnly(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/app/users", nil, f.signIn(f.member))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/app/users", nil, f.signIn(f.admin))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
	if n := parse(t, rec).Find("tr[data-user-id]").Length(); n != 2 {
		t.Errorf("user rows = %d, want 2", n)
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t, true)

	doc := parse(t, f.do(t, http.MethodGet, "/app/profile", nil, f.signIn(f.member)))
	dl := doc.Find("main dl").Text()
	if !strings.Contains(dl, "mel@example.com") || !strings.Contains(dl, "Mel") {
		t.Errorf("profile = %q", dl)
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/no/such/page", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "404 - Not Found") {
		t.Error("not-found page not rendered")
	}
}
