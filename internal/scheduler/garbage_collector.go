package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/agora/internal/index"
	"github.com/MrSnakeDoc/agora/internal/logger"
	redisstore "github.com/MrSnakeDoc/agora/internal/store/redis"
)

const (
	// DefaultGCThreshold is the duration after which disabled discussions are deleted
	DefaultGCThreshold = 7 * 24 * time.Hour
)

// SessionSweeper drops idle sessions.
type SessionSweeper interface {
	Sweep(now time.Time) int
}

// GarbageCollector deletes long-disabled discussions and idle sessions
type GarbageCollector struct {
	store     *redisstore.Store
	index     *index.MemoryIndex
	sessions  SessionSweeper
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector. store and sessions may be nil.
func NewGarbageCollector(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	sessions SessionSweeper,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     store,
		index:     idx,
		sessions:  sessions,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.Collect(ctx)

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect runs one pass and returns the number of discussions and sessions
// removed.
func (gc *GarbageCollector) Collect(ctx context.Context) (discussions, sessions int) {
	now := gc.now()

	discussions = gc.collectDiscussions(ctx, now)
	if gc.sessions != nil {
		sessions = gc.sessions.Sweep(now)
	}

	if discussions+sessions > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("discussions_deleted", discussions),
			logger.Int("sessions_swept", sessions))
	} else {
		gc.logger.Debug("nothing to garbage collect")
	}

	return discussions, sessions
}

func (gc *GarbageCollector) collectDiscussions(ctx context.Context, now time.Time) int {
	deleted := 0

	for _, d := range gc.index.GetAllDiscussions() {
		if !d.Disabled || d.UpdatedAt.IsZero() {
			continue
		}

		disabledFor := now.Sub(d.UpdatedAt)
		if disabledFor < gc.threshold {
			continue
		}

		gc.index.DeleteDiscussion(d.ID)

		// Best effort, the memory index is authoritative
		if gc.store != nil {
			if err := gc.store.DeleteDiscussion(ctx, d.ID); err != nil {
				gc.logger.Warn("failed to delete discussion from redis",
					logger.String("discussion_id", d.ID),
					logger.Error(err))
			}
		}

		gc.logger.Info("garbage collected disabled discussion",
			logger.String("discussion_id", d.ID),
			logger.String("title", d.Title),
			logger.Duration("disabled_for", disabledFor))

		deleted++
	}

	return deleted
}
