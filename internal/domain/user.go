package domain

import (
	"strings"
	"time"
)

// Role drives the authorization gate.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleGuest  Role = "GUEST"
)

// ParseRole normalizes a role name. Unknown values map to MEMBER.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	case RoleGuest:
		return RoleGuest, true
	default:
		return RoleMember, false
	}
}

// SourceRegistration marks users who signed up through the app.
const SourceRegistration = "registration"

// User is a board member, listed in the board file or self-registered.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	TeamID    string    `json:"teamId,omitempty"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// PasswordHash is a bcrypt hash. Users without one cannot sign in.
	PasswordHash string `json:"passwordHash,omitempty"`

	// Source is SourceBoard or SourceRegistration.
	Source string `json:"source,omitempty"`
}

// DisplayName is "First Last", falling back to the email or the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case name != "":
		return name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

// Authorized reports whether user holds one of roles. A nil user is never
// authorized; an empty role list admits any signed-in user.
func Authorized(user *User, roles ...Role) bool {
	if user == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}
