package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/index"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/metrics"
	"github.com/MrSnakeDoc/agora/internal/querycache"
	"github.com/MrSnakeDoc/agora/internal/sources/board"
	redisstore "github.com/MrSnakeDoc/agora/internal/store/redis"
)

// BoardReloader periodically reloads the board document into the index
type BoardReloader struct {
	loader        *board.Loader
	mapper        *board.Mapper
	store         *redisstore.Store // nil when redis is disabled
	index         *index.MemoryIndex
	cache         *querycache.Cache
	metrics       *metrics.Metrics
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewBoardReloader creates a new board reloader. store, cache and m may be nil.
func NewBoardReloader(
	loader *board.Loader,
	store *redisstore.Store,
	idx *index.MemoryIndex,
	cache *querycache.Cache,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *BoardReloader {
	return &BoardReloader{
		loader:        loader,
		mapper:        board.NewMapper(),
		store:         store,
		index:         idx,
		cache:         cache,
		metrics:       m,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the board in the background, then reloads it every interval
// and on each manual trigger. The listing shows its loading state until the
// first load succeeds.
func (br *BoardReloader) Start(ctx context.Context) error {
	if br.interval <= 0 {
		return fmt.Errorf("reload interval must be > 0, got %v", br.interval)
	}

	ticker := time.NewTicker(br.interval)
	go func() {
		defer ticker.Stop()

		br.reloadAndLog(ctx, "initial board load failed")
		for {
			select {
			case <-ticker.C:
				br.reloadAndLog(ctx, "failed to reload board")
			case <-br.manualTrigger:
				br.logger.Info("manual reload triggered")
				br.reloadAndLog(ctx, "failed to reload board")
			case <-br.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (br *BoardReloader) Stop() {
	close(br.stopCh)
}

func (br *BoardReloader) reloadAndLog(ctx context.Context, msg string) {
	if err := br.Reload(ctx); err != nil {
		br.logger.Error(msg, logger.Error(err))
	}
}

// Reload loads the board and updates index, redis and the query cache.
//
// Discussions that vanished from the board are disabled, not dropped, so the
// garbage collector removes them after its threshold. Discussions already
// disabled (removed from the board or deleted by an admin) stay disabled.
func (br *BoardReloader) Reload(ctx context.Context) (err error) {
	defer func() { br.metrics.BoardReloaded(err) }()

	br.logger.Info("reloading board", logger.String("source", br.loader.Source()))

	file, err := br.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	loaded, err := br.mapper.Map(file)
	if err != nil {
		return fmt.Errorf("failed to map board: %w", err)
	}

	br.logger.Info("loaded board",
		logger.Int("discussions", len(loaded.Discussions)),
		logger.Int("users", len(loaded.Users)),
		logger.Int("skipped", loaded.Skipped))
	if loaded.BadHashes > 0 {
		br.logger.Warn("board users with an invalid password hash cannot sign in",
			logger.Int("count", loaded.BadHashes))
	}

	// Users first, so discussions resolve their author as soon as the index
	// reports loaded. Both merges run under the index lock, so an admin
	// delete or a registration landing mid-reload is never overwritten.
	users := br.index.ReplaceUsers(func(current map[string]*domain.User) []*domain.User {
		return mergeUsers(current, loaded.Users)
	})
	removed := 0
	discussions := br.index.ReplaceDiscussions(func(current map[string]*domain.Discussion) []*domain.Discussion {
		var merged []*domain.Discussion
		merged, removed = mergeDiscussions(current, loaded.Discussions, time.Now())
		return merged
	})
	if removed > 0 {
		br.logger.Info("marking removed discussions as disabled", logger.Int("count", removed))
	}

	if br.store != nil {
		if err := br.store.SaveDiscussionsMany(ctx, discussions); err != nil {
			br.logger.Warn("failed to save discussions to redis", logger.Error(err))
		}
		if err := br.store.SaveUsersMany(ctx, users); err != nil {
			br.logger.Warn("failed to save users to redis", logger.Error(err))
		}
	}

	if br.cache != nil {
		if err := br.cache.Flush(ctx); err != nil {
			br.logger.Warn("failed to flush query cache", logger.Error(err))
		}
	}

	return nil
}

// mergeDiscussions combines freshly loaded discussions with the records
// already indexed and returns how many were newly disabled. Existing records
// are copied, never modified.
func mergeDiscussions(current map[string]*domain.Discussion, fresh []*domain.Discussion, now time.Time) ([]*domain.Discussion, int) {
	inBoard := make(map[string]bool, len(fresh))
	for _, d := range fresh {
		inBoard[d.ID] = true
	}

	out := make([]*domain.Discussion, 0, len(fresh))
	for _, d := range fresh {
		if existing, ok := current[d.ID]; ok && existing.Disabled {
			cp := *existing
			cp.Author = nil
			out = append(out, &cp)
			continue
		}
		out = append(out, d)
	}

	removed := 0
	for id, existing := range current {
		if inBoard[id] || !existing.HasSource(domain.SourceBoard) {
			continue
		}
		cp := *existing
		cp.Author = nil
		if !cp.Disabled {
			cp.Disabled = true
			cp.UpdatedAt = now
			removed++
		}
		out = append(out, &cp)
	}

	return out, removed
}

// mergeUsers keeps self-registered users next to the board directory. The
// board wins when it claims the same id or email.
func mergeUsers(current map[string]*domain.User, fresh []*domain.User) []*domain.User {
	ids := make(map[string]bool, len(fresh))
	emails := make(map[string]bool, len(fresh))
	for _, u := range fresh {
		ids[u.ID] = true
		if u.Email != "" {
			emails[strings.ToLower(u.Email)] = true
		}
	}

	out := slices.Clone(fresh)
	for _, u := range current {
		if u.Source != domain.SourceRegistration || ids[u.ID] || emails[strings.ToLower(u.Email)] {
			continue
		}
		out = append(out, u)
	}
	return out
}
