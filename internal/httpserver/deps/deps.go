package deps

import (
	"time"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/index"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/metrics"
	"github.com/MrSnakeDoc/agora/internal/querycache"
	"github.com/MrSnakeDoc/agora/internal/session"
	redisstore "github.com/MrSnakeDoc/agora/internal/store/redis"
	"github.com/MrSnakeDoc/agora/internal/view"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time   // for testing, defaults to time.Now
	RequestTimeout time.Duration      // per-request deadline, the favorites stream is exempt
	AllowedHosts   []string           // Host headers allowed to hit /reload
	AllowedCIDRS   []string           // IPs allowed to access ops endpoints
	TrustProxy     bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	SecureCookies  bool               // set Secure on the session cookie
	PasswordCost   int                // bcrypt cost for new accounts, 0 => default
	PageSize       int                // discussions per page
	RedisStore     *redisstore.Store  // nil when redis is disabled
	MemoryIndex    *index.MemoryIndex // In-memory discussions and users
	Sessions       *session.Manager   // signed-in sessions and their favorites
	Tokens         *auth.Codec        // session cookie codec
	Cache          *querycache.Cache  // request cache for listing and detail loads
	Metrics        *metrics.Metrics   // nil disables instrumentation
	View           *view.Renderer     // HTML templates
	ReloadTrigger  chan struct{}      // Channel to trigger a manual board reload
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
