package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/logger"
)

const (
	streamWriteWait    = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts browsers on our own host and non-browser clients that
// send no Origin.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// FavoritesStream pushes the re-rendered rows of one listing page over a
// websocket every time the session favorites change.
func FavoritesStream(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := mw.SessionFrom(r.Context())
		page := pageParam(r)

		// Subscribed before the handshake so no change is missed. The
		// listener only signals; all I/O happens below.
		changed := make(chan struct{}, 1)
		unsubscribe := s.Favorites.Subscribe(func([]string) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Debug("favorites stream upgrade failed", logger.Error(err))
			return
		}
		defer conn.Close()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
						d.Logger.Debug("favorites stream closed", logger.Error(err))
					}
					return
				}
			}
		}()

		ping := time.NewTicker(streamPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-closed:
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
					return
				}
			case <-changed:
				viewer, ok := d.MemoryIndex.GetUser(s.User.ID)
				if !ok {
					return
				}
				state, err := listState(r.Context(), d, s.Favorites.IDs(), viewer, page)
				if err != nil {
					d.Logger.Warn("favorites stream reload failed", logger.Error(err))
					continue
				}
				var buf bytes.Buffer
				if err := d.View.DiscussionsBody(&buf, state); err != nil {
					d.Logger.Error("favorites stream render failed", logger.Error(err))
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
					return
				}
			}
		}
	}
}
