package board

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a board YAML document.
type File struct {
	Users       []UserProps       `yaml:"users"`
	Discussions []DiscussionProps `yaml:"discussions"`
}

// UserProps is one entry of the users list.
type UserProps struct {
	ID        string    `yaml:"id"`
	FirstName string    `yaml:"firstName"`
	LastName  string    `yaml:"lastName"`
	Email     string    `yaml:"email"`
	TeamID    string    `yaml:"teamId,omitempty"`
	Role      string    `yaml:"role,omitempty"`
	Bio       string    `yaml:"bio,omitempty"`
	CreatedAt Timestamp `yaml:"createdAt,omitempty"`

	// PasswordHash is a bcrypt hash (htpasswd -bnBC 10 "" secret).
	PasswordHash string `yaml:"passwordHash,omitempty"`
}

// DiscussionProps is one entry of the discussions list. ID is optional.
type DiscussionProps struct {
	ID        string    `yaml:"id,omitempty"`
	Title     string    `yaml:"title"`
	Body      string    `yaml:"body,omitempty"`
	TeamID    string    `yaml:"teamId,omitempty"`
	AuthorID  string    `yaml:"authorId,omitempty"`
	CreatedAt Timestamp `yaml:"createdAt,omitempty"`
}

// Timestamp accepts either epoch milliseconds or an RFC 3339 string.
type Timestamp struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: createdAt must be a scalar", node.Line)
	}
	if node.Value == "" {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, node.Value)
	if err != nil {
		return fmt.Errorf("line %d: createdAt %q is neither epoch millis nor RFC 3339", node.Line, node.Value)
	}
	t.Time = parsed.UTC()
	return nil
}
