// Package model defines the domain records stored in MySQL and the small
// value types (roles, relation keys, linking codes) shared by every layer.
package model

// Role is the closed set of account kinds.  Permissions and visibility
// diverge sharply by role, so callers switch exhaustively over the three
// values instead of comparing raw strings.
type Role string

const (
	RoleTeacher Role = "professor"
	RoleStudent Role = "aluno"
	RoleUnknown Role = ""
)

// ParseRole maps a stored or client-supplied string onto the closed set.
// Anything unrecognized collapses to RoleUnknown, which downstream resolvers
// treat as the least privileged branch.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleTeacher:
		return RoleTeacher
	case RoleStudent:
		return RoleStudent
	}
	return RoleUnknown
}

// Valid reports whether the role is one of the two real account kinds.
func (r Role) Valid() bool { return r == RoleTeacher || r == RoleStudent }

func (r Role) String() string { return string(r) }
