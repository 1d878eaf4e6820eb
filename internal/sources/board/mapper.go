package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/domain"
)

// discussionNamespace seeds generated discussion ids.
var discussionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("agora:discussion"))

// Board is the mapped content of a board document.
type Board struct {
	Discussions []*domain.Discussion
	Users       []*domain.User
	Skipped     int // entries dropped as invalid or duplicate
	BadHashes   int // users kept without a password hash
}

// Mapper converts a parsed board document to domain records.
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new board mapper.
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// Map converts f to domain records. Users without an id and discussions
// without a title are skipped, as are duplicate ids (first one wins).
func (m *Mapper) Map(f *File) (*Board, error) {
	if f == nil {
		return nil, fmt.Errorf("board document is empty")
	}

	now := m.now().UTC()
	b := &Board{
		Discussions: make([]*domain.Discussion, 0, len(f.Discussions)),
		Users:       make([]*domain.User, 0, len(f.Users)),
	}

	seenUsers := make(map[string]bool, len(f.Users))
	for _, p := range f.Users {
		id := strings.TrimSpace(p.ID)
		if id == "" || seenUsers[id] {
			b.Skipped++
			continue
		}
		seenUsers[id] = true

		role, _ := domain.ParseRole(p.Role)
		hash := strings.TrimSpace(p.PasswordHash)
		if hash != "" && !auth.ValidHash(hash) {
			hash = ""
			b.BadHashes++
		}
		b.Users = append(b.Users, &domain.User{
			ID:           id,
			FirstName:    strings.TrimSpace(p.FirstName),
			LastName:     strings.TrimSpace(p.LastName),
			Email:        strings.TrimSpace(p.Email),
			TeamID:       strings.TrimSpace(p.TeamID),
			Role:         role,
			Bio:          p.Bio,
			CreatedAt:    orNow(p.CreatedAt.Time, now),
			PasswordHash: hash,
			Source:       domain.SourceBoard,
		})
	}

	seenDiscussions := make(map[string]bool, len(f.Discussions))
	for _, p := range f.Discussions {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			b.Skipped++
			continue
		}

		createdAt := orNow(p.CreatedAt.Time, now)
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = GenerateDiscussionID(title, createdAt)
		}
		if seenDiscussions[id] {
			b.Skipped++
			continue
		}
		seenDiscussions[id] = true

		b.Discussions = append(b.Discussions, &domain.Discussion{
			ID:        id,
			Title:     title,
			Body:      p.Body,
			TeamID:    strings.TrimSpace(p.TeamID),
			AuthorID:  strings.TrimSpace(p.AuthorID),
			Sources:   []string{domain.SourceBoard},
			CreatedAt: createdAt,
			UpdatedAt: now,
		})
	}

	if len(b.Discussions) == 0 && len(b.Users) == 0 {
		return nil, fmt.Errorf("no valid discussions or users found in board")
	}

	return b, nil
}

// GenerateDiscussionID derives a stable id from the title and creation
// time, so reloading an unchanged document keeps ids (and favorites) valid.
func GenerateDiscussionID(title string, createdAt time.Time) string {
	name := title + "|" + strconv.FormatInt(createdAt.UnixMilli(), 10)
	return uuid.NewSHA1(discussionNamespace, []byte(name)).String()
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}
