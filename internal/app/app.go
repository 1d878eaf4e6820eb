// Package app wires every component and runs the server until a signal.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/config"
	"github.com/MrSnakeDoc/agora/internal/httpserver"
	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/index"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/metrics"
	"github.com/MrSnakeDoc/agora/internal/querycache"
	"github.com/MrSnakeDoc/agora/internal/redis"
	"github.com/MrSnakeDoc/agora/internal/scheduler"
	"github.com/MrSnakeDoc/agora/internal/session"
	"github.com/MrSnakeDoc/agora/internal/sources/board"
	redisstore "github.com/MrSnakeDoc/agora/internal/store/redis"
	"github.com/MrSnakeDoc/agora/internal/version"
	"github.com/MrSnakeDoc/agora/internal/view"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Manager
	reloader    *scheduler.BoardReloader
	gc          *scheduler.GarbageCollector
}

// New builds the application. Redis is optional: without an address the
// query cache lives in process memory and nothing is mirrored.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	memIndex := index.NewMemoryIndex()
	m := metrics.New()

	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		backend     querycache.Backend = querycache.NewMemoryBackend()
	)
	if cfg.RedisEnabled() {
		loggerClient.Info("connecting to redis", logger.String("addr", cfg.RedisAddr))
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		redisClient = client
		store = redisstore.NewStore(client)
		backend = store

		// A warm mirror lets the list render before the board is fetched.
		if err := scheduler.NewRedisSyncer(store, memIndex, loggerClient).Sync(ctx); err != nil {
			loggerClient.Warn("failed to sync from redis on startup, waiting for the board",
				logger.Error(err))
		}
	} else {
		loggerClient.Info("redis not configured, using the in-process query cache")
	}

	cache := querycache.New(backend, cfg.CacheTTL, m, loggerClient)
	sessions := session.NewManager(cfg.SessionIdleTTL, m)
	reloadTrigger := make(chan struct{}, 1)

	loader := board.NewLoader(cfg.BoardSource,
		board.WithLogger(loggerClient),
		board.WithRetry(cfg.SourceRetryAttempts, time.Second),
		board.WithHTTPClient(&http.Client{Timeout: cfg.SourceFetchTimeout}),
	)
	reloader := scheduler.NewBoardReloader(loader, store, memIndex, cache, m, loggerClient, cfg.ReloadInterval, reloadTrigger)
	gc := scheduler.NewGarbageCollector(store, memIndex, sessions, loggerClient, cfg.GCInterval, cfg.GCThreshold)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		RequestTimeout: cfg.RequestTimeout,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		SecureCookies:  cfg.SecureCookies,
		PasswordCost:   cfg.PasswordCost,
		PageSize:       cfg.PageSize,
		RedisStore:     store,
		MemoryIndex:    memIndex,
		Sessions:       sessions,
		Tokens:         auth.NewCodec(cfg.SessionSecret, cfg.SessionTTL),
		Cache:          cache,
		Metrics:        m,
		View:           view.MustNew(),
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, d),
		redisClient: redisClient,
		sessions:    sessions,
		reloader:    reloader,
		gc:          gc,
	}, nil
}

// Run blocks until SIGINT/SIGTERM or a server error, then shuts down.
func Run(cfg *config.Config, loggerClient logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, loggerClient)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting agora",
		logger.String("version", version.Version),
		logger.String("commit", version.Commit),
		logger.String("listen", a.cfg.ListenPort))

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start board reloader: %w", err)
	}
	a.logger.Info("board reloader started",
		logger.String("source", a.cfg.BoardSource),
		logger.Duration("interval", a.cfg.ReloadInterval))

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("sessions dropped", logger.Int("count", a.sessions.Count()))

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", logger.Error(err))
		} else {
			a.logger.Info("redis closed cleanly")
		}
	}

	a.logger.Info("agora stopped cleanly")
	return nil
}
