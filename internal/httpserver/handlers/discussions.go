package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/agora/internal/domain"
	"github.com/MrSnakeDoc/agora/internal/httpserver/deps"
	"github.com/MrSnakeDoc/agora/internal/httpserver/mw"
	"github.com/MrSnakeDoc/agora/internal/httpserver/paths"
	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/querycache"
	"github.com/MrSnakeDoc/agora/internal/view"
)

var errDiscussionNotFound = errors.New("discussion not found")

// discussionPage is the cached payload of one listing page.
type discussionPage struct {
	Discussions []*domain.Discussion `json:"discussions"`
	Meta        domain.PageMeta      `json:"meta"`
}

// listState builds what the discussions list renders for one page. Before
// the first board load it reports Loading and reads nothing.
func listState(ctx context.Context, d deps.Deps, favoriteIDs []string, viewer *domain.User, page int) (view.ListState, error) {
	state := view.ListState{FavoriteIDs: favoriteIDs, Viewer: viewer}
	if !d.MemoryIndex.Loaded() {
		state.Loading = true
		return state, nil
	}

	var p discussionPage
	err := d.Cache.GetOrLoad(ctx, querycache.PageKey(page, d.PageSize), &p, func(context.Context) (any, error) {
		items, meta := domain.Paginate(d.MemoryIndex.ListActive(), page, d.PageSize)
		return discussionPage{Discussions: items, Meta: meta}, nil
	})
	if err != nil {
		return state, err
	}

	state.Discussions = withAuthors(d, p.Discussions)
	state.Meta = p.Meta
	return state, nil
}

// withAuthors re-attaches authors to decoded records; they are not cached.
func withAuthors(d deps.Deps, list []*domain.Discussion) []*domain.Discussion {
	for _, disc := range list {
		if u, ok := d.MemoryIndex.GetUser(disc.AuthorID); ok {
			disc.Author = u
		}
	}
	return list
}

func loadDiscussion(d deps.Deps, id string) querycache.LoadFunc {
	return func(context.Context) (any, error) {
		disc, ok := d.MemoryIndex.GetDiscussion(id)
		if !ok || disc.Disabled {
			return nil, errDiscussionNotFound
		}
		return disc, nil
	}
}

// Discussions renders the paginated listing with favorites highlighted.
func Discussions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := mw.SessionFrom(r.Context())

		state, err := listState(r.Context(), d, s.Favorites.IDs(), mw.Viewer(r.Context()), pageParam(r))
		if err != nil {
			d.Logger.Error("failed to load discussions", logger.Error(err))
			renderError(d, w, r, http.StatusInternalServerError, "Discussions are unavailable right now.")
			return
		}

		render(d, w, r, http.StatusOK, "discussions", view.Page{
			Title: "Discussions",
			Data:  view.DiscussionsPage{List: state},
		})
	}
}

// Discussion renders one discussion with its favorite toggle.
func Discussion(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := mw.SessionFrom(r.Context())
		id := chi.URLParam(r, "id")

		var disc domain.Discussion
		err := d.Cache.GetOrLoad(r.Context(), querycache.DiscussionKey(id), &disc, loadDiscussion(d, id))
		switch {
		case errors.Is(err, errDiscussionNotFound):
			NotFound(d)(w, r)
			return
		case err != nil:
			d.Logger.Error("failed to load discussion",
				logger.String("id", id),
				logger.Error(err))
			renderError(d, w, r, http.StatusInternalServerError, "This discussion is unavailable right now.")
			return
		}
		withAuthors(d, []*domain.Discussion{&disc})

		render(d, w, r, http.StatusOK, "discussion", view.Page{
			Title: disc.Title,
			Data: view.DiscussionDetail{
				Discussion: &disc,
				Favorite: view.FavoriteButtonProps{
					IsFavorite: s.Favorites.Contains(id),
					Action:     paths.FavoriteHref(id),
					ReturnTo:   paths.DiscussionHref(id),
				},
			},
		})
	}
}

// Prefetch warms the cache for a discussion the user is about to open.
func Prefetch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := d.Cache.Prefetch(r.Context(), querycache.DiscussionKey(id), loadDiscussion(d, id))
		switch {
		case errors.Is(err, errDiscussionNotFound):
			w.WriteHeader(http.StatusNotFound)
		case err != nil:
			d.Logger.Warn("prefetch failed",
				logger.String("id", id),
				logger.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// DeleteDiscussion disables a discussion. Admin only. The record is purged
// later by the garbage collector.
func DeleteDiscussion(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		disc, ok := d.MemoryIndex.DisableDiscussion(id, d.Now())
		if !ok {
			NotFound(d)(w, r)
			return
		}

		if d.RedisStore != nil {
			if err := d.RedisStore.SaveDiscussion(r.Context(), disc); err != nil {
				d.Logger.Warn("failed to mirror deleted discussion",
					logger.String("id", id),
					logger.Error(err))
			}
		}
		if err := d.Cache.Flush(r.Context()); err != nil {
			d.Logger.Warn("failed to flush query cache", logger.Error(err))
		}

		d.Logger.Info("discussion deleted",
			logger.String("id", id),
			logger.String("by", mw.Viewer(r.Context()).ID))
		redirectBack(w, r, paths.Discussions)
	}
}
