package domain

import "time"

// SourceBoard marks records that came from the board file.
const SourceBoard = "board"

// Discussion is the canonical runtime record of a discussion thread.
//
// It is NOT tied to the board file or Redis; every source is mapped into
// this structure. Favorites only ever look at ID.
type Discussion struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is an opaque unique string.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	TeamID   string `json:"teamId,omitempty"`
	AuthorID string `json:"authorId,omitempty"`

	// Author is resolved from the user directory on load. It is not stored.
	Author *User `json:"-"`

	// ─────────────────────────────
	// Provenance & lifecycle
	// ─────────────────────────────

	// Sources indicates where this discussion was discovered from.
	Sources []string `json:"sources,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Disabled marks a discussion as removed (by an admin or because it
	// vanished from the source). It is garbage-collected later.
	Disabled bool `json:"disabled,omitempty"`
}

// HasSource reports whether the discussion was seen in source.
func (d *Discussion) HasSource(source string) bool {
	for _, s := range d.Sources {
		if s == source {
			return true
		}
	}
	return false
}
