package board

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/agora/internal/auth"
	"github.com/MrSnakeDoc/agora/internal/domain"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestMapper() *Mapper {
	return &Mapper{now: func() time.Time { return fixedNow }}
}

func TestMapperMap(t *testing.T) {
	created := Timestamp{time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)}
	file := &File{
		Users: []UserProps{
			{ID: "u1", FirstName: " Taro ", Role: "ADMIN"},
			{ID: "u2", FirstName: "Hanako", Role: "overlord"},
			{ID: "", FirstName: "Nobody"},
			{ID: "u1", FirstName: "Duplicate"},
		},
		Discussions: []DiscussionProps{
			{ID: "d1", Title: "Hello", AuthorID: "u1", CreatedAt: created},
			{Title: "Generated id", CreatedAt: created},
			{ID: "d3", Title: "   "},
			{ID: "d1", Title: "Duplicate"},
		},
	}

	b, err := newTestMapper().Map(file)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if len(b.Users) != 2 || len(b.Discussions) != 2 {
		t.Fatalf("Map() = %d users, %d discussions; want 2, 2", len(b.Users), len(b.Discussions))
	}
	if b.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", b.Skipped)
	}

	if b.Users[0].FirstName != "Taro" || b.Users[0].Role != domain.RoleAdmin {
		t.Errorf("user u1 = %+v", b.Users[0])
	}
	if b.Users[1].Role != domain.RoleMember {
		t.Errorf("unknown role should map to MEMBER, got %s", b.Users[1].Role)
	}
	if !b.Users[0].CreatedAt.Equal(fixedNow) {
		t.Errorf("missing createdAt should default to now, got %v", b.Users[0].CreatedAt)
	}

	d := b.Discussions[0]
	if d.ID != "d1" || !d.CreatedAt.Equal(created.Time) || !d.HasSource(domain.SourceBoard) {
		t.Errorf("discussion d1 = %+v", d)
	}

	gen := b.Discussions[1]
	if want := GenerateDiscussionID("Generated id", created.Time); gen.ID != want {
		t.Errorf("generated id = %s, want %s", gen.ID, want)
	}
}

func TestMapperPasswordHashes(t *testing.T) {
	hash, err := auth.HashPassword("board-secret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	file := &File{Users: []UserProps{
		{ID: "u1", PasswordHash: hash},
		{ID: "u2", PasswordHash: "plaintext-by-mistake"},
		{ID: "u3"},
	}}

	b, err := newTestMapper().Map(file)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if b.BadHashes != 1 {
		t.Errorf("BadHashes = %d, want 1", b.BadHashes)
	}
	want := map[string]string{"u1": hash, "u2": "", "u3": ""}
	for _, u := range b.Users {
		if u.PasswordHash != want[u.ID] {
			t.Errorf("%s PasswordHash = %q, want %q", u.ID, u.PasswordHash, want[u.ID])
		}
		if u.Source != domain.SourceBoard {
			t.Errorf("%s Source = %q, want board", u.ID, u.Source)
		}
	}
}

func TestMapperMapEmpty(t *testing.T) {
	if _, err := newTestMapper().Map(&File{}); err == nil {
		t.Error("Map() should fail on an empty board")
	}
	if _, err := newTestMapper().Map(nil); err == nil {
		t.Error("Map() should fail on a nil document")
	}
}

func TestGenerateDiscussionIDStable(t *testing.T) {
	at := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	id1 := GenerateDiscussionID("Title", at)
	id2 := GenerateDiscussionID("Title", at)
	if id1 != id2 {
		t.Errorf("ids differ for identical input: %s vs %s", id1, id2)
	}
	if id3 := GenerateDiscussionID("Title", at.Add(time.Millisecond)); id3 == id1 {
		t.Error("different createdAt should yield a different id")
	}
}
