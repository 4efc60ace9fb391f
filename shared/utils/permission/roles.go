package permission

import "fmt"

// Role represents a member's role within an organization
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// roleRanks defines the total order of roles: owner > admin > user > viewer
var roleRanks = map[Role]int{
	RoleViewer: 1,
	RoleUser:   2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Rank returns the numeric rank of a role (higher means more authority).
// Unknown roles rank below every valid role.
func Rank(role Role) int {
	return roleRanks[role]
}

// AtLeast reports whether role a carries at least the authority of role b
func AtLeast(a, b Role) bool {
	return Rank(a) >= Rank(b)
}

// IsValid reports whether the role is one of the four known roles
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// ParseRole parses a role string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %q (must be owner, admin, user or viewer)", s)
	}
	return role, nil
}

// ParseInvitableRole parses a role string and rejects roles that cannot be
// granted through an invitation. Ownership is never granted by invitation.
func ParseInvitableRole(s string) (Role, error) {
	role, err := ParseRole(s)
	if err != nil {
		return "", err
	}
	if role == RoleOwner {
		return "", fmt.Errorf("invalid invitation role: %q (must be admin, user or viewer)", s)
	}
	return role, nil
}
