package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready      bool   `json:"ready"`
	BoardReady bool   `json:"board_ready"`
	Redis      string `json:"redis"`
}

// Readyz is ready once the board is loaded and, when configured, Redis
// answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			BoardReady: d.MemoryIndex.Loaded(),
			Redis:      redisState(r.Context(), d),
		}
		resp.Ready = resp.BoardReady && resp.Redis != "down"

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

// redisState is "disabled", "up" or "down".
func redisState(ctx context.Context, d deps.Deps) string {
	if d.RedisStore == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := d.RedisStore.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
