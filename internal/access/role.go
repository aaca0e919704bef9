package access

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// Role is a sign-in level. Roles are ordered guru < kepsek < admin.
type Role string

const (
	RoleGuru   Role = "guru"
	RoleKepsek Role = "kepsek"
	RoleAdmin  Role = "admin"
)

// Roles lists every role, lowest first.
var Roles = []Role{RoleGuru, RoleKepsek, RoleAdmin}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.rank() == 0 {
		return "", &Error{Code: ErrCodeUnknownRole, Message: fmt.Sprintf("unknown role %q", s)}
	}
	return r, nil
}

func (r Role) rank() int {
	switch r {
	case RoleGuru:
		return 1
	case RoleKepsek:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r meets min. An unknown role meets nothing.
func (r Role) AtLeast(min Role) bool {
	return r.rank() > 0 && r.rank() >= min.rank()
}

// DisplayName is the name recorded for a session of this role.
func (r Role) DisplayName() string {
	switch r {
	case RoleGuru:
		return "Guru"
	case RoleKepsek:
		return "Kepala Sekolah"
	case RoleAdmin:
		return "Admin Super"
	}
	return "Unknown"
}

// Credentials decides whether a password opens a role.
type Credentials interface {
	Check(role Role, password string) bool
}

// StaticCredentials maps each protected role to a fixed password. Roles
// missing from the map need no password.
type StaticCredentials map[Role]string

// DefaultCredentials returns the stock passwords.
func DefaultCredentials() StaticCredentials {
	return StaticCredentials{
		RoleKepsek: "Drm84",
		RoleAdmin:  "Darul84",
	}
}

// Check compares password with the role's secret.
func (c StaticCredentials) Check(role Role, password string) bool {
	secret, ok := c[role]
	if !ok {
		return role.rank() > 0
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}
