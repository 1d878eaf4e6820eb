package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Count      *int   `json:"count,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra describes every component and the overall serving mode:
// "critical" without a board, "degraded" when Redis is configured but
// down, "optimal" otherwise.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discussions := d.MemoryIndex.Count()
		sessions := d.Sessions.Count()

		lastReload := "never"
		if t := d.MemoryIndex.GetLastReload(); !t.IsZero() {
			lastReload = t.UTC().Format(time.RFC3339)
		}

		board := componentStatus{OK: d.MemoryIndex.Loaded(), Count: &discussions, LastReload: lastReload}
		redis := componentStatus{Mode: redisState(r.Context(), d)}
		switch redis.Mode {
		case "up":
			redis.OK = true
		case "disabled":
			redis.OK = true
			redis.Impact = "query-cache-in-memory"
		default:
			redis.Impact = "query-cache-bypassed"
		}

		mode := "optimal"
		switch {
		case !board.OK:
			mode = "critical"
		case !redis.OK:
			mode = "degraded"
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode: mode,
			Components: map[string]componentStatus{
				"board":    board,
				"redis":    redis,
				"sessions": {OK: true, Count: &sessions},
			},
		})
	}
}
