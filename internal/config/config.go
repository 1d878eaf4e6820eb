package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinSessionSecretLen is the shortest HMAC key accepted for session tokens.
const MinSessionSecretLen = 32

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Board source
	BoardSource         string        // path or http(s) URL of the board YAML (discussions + users)
	ReloadInterval      time.Duration // interval to reload the board (default: 10m)
	SourceFetchTimeout  time.Duration // per-attempt timeout for remote sources
	SourceRetryAttempts uint          // attempts for remote sources before giving up
	GCInterval          time.Duration // interval to run garbage collection (default: 1h)
	GCThreshold         time.Duration // how long a removed discussion stays before deletion

	// Sessions
	SessionSecret  string        // HMAC key for session cookies (>= 32 bytes)
	SessionTTL     time.Duration // absolute lifetime of a session cookie
	SessionIdleTTL time.Duration // idle sessions are swept after this
	SecureCookies  bool          // set the Secure flag on the session cookie
	PasswordCost   int           // bcrypt cost for registered passwords

	// Listing & cache
	PageSize int           // discussions per page
	CacheTTL time.Duration // query cache entry lifetime

	// Redis (optional, empty address => in-process cache, no snapshot)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func Load() *Config {
	cfg := &Config{
		ListenPort:      getenv("AGORA_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("AGORA_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("AGORA_REQUEST_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("AGORA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AGORA_PRETTY_LOG", true),

		BoardSource:         requireEnv("AGORA_BOARD_SOURCE"),
		ReloadInterval:      mustDuration("AGORA_RELOAD_INTERVAL", 10*time.Minute),
		SourceFetchTimeout:  mustDuration("AGORA_SOURCE_FETCH_TIMEOUT", 10*time.Second),
		SourceRetryAttempts: uint(getenvInt("AGORA_SOURCE_RETRY_ATTEMPTS", 5)),
		GCInterval:          mustDuration("AGORA_GC_INTERVAL", time.Hour),
		GCThreshold:         mustDuration("AGORA_GC_THRESHOLD", 7*24*time.Hour),

		SessionSecret:  requireEnv("AGORA_SESSION_SECRET"),
		SessionTTL:     mustDuration("AGORA_SESSION_TTL", 12*time.Hour),
		SessionIdleTTL: mustDuration("AGORA_SESSION_IDLE_TTL", 2*time.Hour),
		SecureCookies:  mustBool("AGORA_SECURE_COOKIES", false),
		PasswordCost:   getenvInt("AGORA_PASSWORD_COST", 10),

		PageSize: getenvInt("AGORA_PAGE_SIZE", 10),
		CacheTTL: mustDuration("AGORA_CACHE_TTL", 5*time.Minute),

		RedisAddr:           getenv("AGORA_REDIS_ADDR", ""),
		RedisUser:           getenv("AGORA_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("AGORA_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("AGORA_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		AllowedHosts: splitAndTrim(getenv("AGORA_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("AGORA_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("AGORA_TRUST_PROXY", false),
	}

	if len(cfg.SessionSecret) < MinSessionSecretLen {
		panic(fmt.Sprintf("❌ FATAL: AGORA_SESSION_SECRET must be at least %d bytes", MinSessionSecretLen))
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.SessionSecret = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
