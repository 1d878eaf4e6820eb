package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/agora/internal/session"
)

func dialStream(t *testing.T, f *fixture, srv *httptest.Server, s *session.Session, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	header.Add("Cookie", f.cookie(t, s).String())
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/app/favorites/stream?page=1"
	return websocket.DefaultDialer.Dial(url, header)
}

func TestFavoritesStreamPushesRows(t *testing.T) {
	f := newFixture(t, true)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	s := f.signIn(f.member)
	conn, _, err := dialStream(t, f, srv, s, "")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	s.Favorites.Toggle("d2")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + string(msg) + "</table>"))
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}
	if doc.Find("tbody#discussions-body").Length() != 1 {
		t.Fatalf("message is not the list body: %s", msg)
	}
	if !doc.Find(`tr[data-discussion-id="d2"]`).HasClass("row-favorite") {
		t.Error("d2 should be highlighted in the pushed rows")
	}
	if doc.Find(`tr[data-discussion-id="d1"]`).HasClass("row-favorite") {
		t.Error("d1 should not be highlighted")
	}
}

func TestFavoritesStreamUnsubscribesOnClose(t *testing.T) {
	f := newFixture(t, true)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	s := f.signIn(f.member)
	conn, _, err := dialStream(t, f, srv, s, "")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if n := s.Favorites.Subscribers(); n != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitUnsubscribed(t, s)
}

func TestFavoritesStreamRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t, true)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	s := f.signIn(f.member)
	_, resp, err := dialStream(t, f, srv, s, "https://evil.example")
	if err == nil {
		t.Fatal("Dial() should fail for a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %+v, want 403", resp)
	}
	waitUnsubscribed(t, s)
}

func waitUnsubscribed(t *testing.T, s *session.Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Favorites.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream did not unsubscribe")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
