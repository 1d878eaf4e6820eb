package index

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/agora/internal/domain"
)

// ErrUserExists is returned by RegisterUser when the id or email is taken.
var ErrUserExists = errors.New("user already exists")

// MemoryIndex is the primary in-process copy of the board: discussions and
// the user directory. Redis, when enabled, only mirrors it.
type MemoryIndex struct {
	mu          sync.RWMutex
	discussions map[string]*domain.Discussion // ID -> Discussion
	users       map[string]*domain.User       // ID -> User
	lastReload  time.Time                     // zero until the first successful load
}

// NewMemoryIndex creates an empty index. It reports Loaded() == false until
// UpdateDiscussions is called once.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		discussions: make(map[string]*domain.Discussion),
		users:       make(map[string]*domain.User),
	}
}

// UpdateDiscussions replaces all discussions and marks the index loaded.
func (idx *MemoryIndex) UpdateDiscussions(discussions []*domain.Discussion) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.discussions = make(map[string]*domain.Discussion, len(discussions))
	for _, d := range discussions {
		idx.discussions[d.ID] = d
	}
	idx.resolveAuthorsLocked()
	idx.lastReload = time.Now()
}

// ReplaceDiscussions swaps all discussions for the result of build, which
// runs under the write lock and sees the current records. No other update
// can land between build reading current and the swap. build must not keep
// or modify current. It returns what was stored.
func (idx *MemoryIndex) ReplaceDiscussions(build func(current map[string]*domain.Discussion) []*domain.Discussion) []*domain.Discussion {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	discussions := build(idx.discussions)
	idx.discussions = make(map[string]*domain.Discussion, len(discussions))
	for _, d := range discussions {
		idx.discussions[d.ID] = d
	}
	idx.resolveAuthorsLocked()
	idx.lastReload = time.Now()

	out := make([]*domain.Discussion, 0, len(idx.discussions))
	for _, d := range idx.discussions {
		out = append(out, d)
	}
	return out
}

// ReplaceUsers is ReplaceDiscussions for the user directory.
func (idx *MemoryIndex) ReplaceUsers(build func(current map[string]*domain.User) []*domain.User) []*domain.User {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	users := build(idx.users)
	idx.users = make(map[string]*domain.User, len(users))
	for _, u := range users {
		idx.users[u.ID] = u
	}
	idx.resolveAuthorsLocked()
	return users
}

// UpdateUsers replaces the user directory.
func (idx *MemoryIndex) UpdateUsers(users []*domain.User) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.users = make(map[string]*domain.User, len(users))
	for _, u := range users {
		idx.users[u.ID] = u
	}
	idx.resolveAuthorsLocked()
}

// resolveAuthorsLocked swaps in copies carrying the current author. Records
// already handed out are never written to.
func (idx *MemoryIndex) resolveAuthorsLocked() {
	for id, d := range idx.discussions {
		cp := *d
		cp.Author = idx.users[d.AuthorID]
		idx.discussions[id] = &cp
	}
}

// GetDiscussion retrieves a discussion by ID, disabled ones included.
func (idx *MemoryIndex) GetDiscussion(id string) (*domain.Discussion, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	d, ok := idx.discussions[id]
	return d, ok
}

// GetAllDiscussions returns every discussion, disabled ones included, in no
// particular order.
func (idx *MemoryIndex) GetAllDiscussions() []*domain.Discussion {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.Discussion, 0, len(idx.discussions))
	for _, d := range idx.discussions {
		out = append(out, d)
	}
	return out
}

// ListActive returns enabled discussions, newest first. Ties are broken by
// ID so listings are deterministic.
func (idx *MemoryIndex) ListActive() []*domain.Discussion {
	idx.mu.RLock()
	out := make([]*domain.Discussion, 0, len(idx.discussions))
	for _, d := range idx.discussions {
		if !d.Disabled {
			out = append(out, d)
		}
	}
	idx.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AddDiscussion adds or updates a single discussion.
func (idx *MemoryIndex) AddDiscussion(d *domain.Discussion) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cp := *d
	cp.Author = idx.users[d.AuthorID]
	idx.discussions[d.ID] = &cp
}

// DisableDiscussion soft-deletes a discussion and returns it.
func (idx *MemoryIndex) DisableDiscussion(id string, at time.Time) (*domain.Discussion, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	d, ok := idx.discussions[id]
	if !ok || d.Disabled {
		return nil, false
	}
	cp := *d
	cp.Disabled = true
	cp.UpdatedAt = at
	idx.discussions[id] = &cp
	return &cp, true
}

// DeleteDiscussion removes a discussion from the index.
func (idx *MemoryIndex) DeleteDiscussion(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.discussions, id)
}

// Count returns the number of enabled discussions.
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, d := range idx.discussions {
		if !d.Disabled {
			n++
		}
	}
	return n
}

// GetUser looks a user up in the directory.
func (idx *MemoryIndex) GetUser(id string) (*domain.User, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	u, ok := idx.users[id]
	return u, ok
}

// FindUserByEmail looks a user up by email, ignoring case.
func (idx *MemoryIndex) FindUserByEmail(email string) (*domain.User, bool) {
	if email == "" {
		return nil, false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, u := range idx.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return nil, false
}

// RegisterUser adds u unless its id or email is already in the directory.
func (idx *MemoryIndex) RegisterUser(u *domain.User) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.users[u.ID]; ok {
		return ErrUserExists
	}
	for _, existing := range idx.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrUserExists
		}
	}
	idx.users[u.ID] = u
	return nil
}

// Users returns the directory sorted by display name.
func (idx *MemoryIndex) Users() []*domain.User {
	idx.mu.RLock()
	out := make([]*domain.User, 0, len(idx.users))
	for _, u := range idx.users {
		out = append(out, u)
	}
	idx.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].DisplayName(), out[j].DisplayName(); a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Loaded reports whether discussions were loaded at least once.
func (idx *MemoryIndex) Loaded() bool {
	return !idx.GetLastReload().IsZero()
}

// GetLastReload returns the timestamp of the last discussions update.
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
