package domain

// Role enumerates the closed set of caller roles. There is no
// user-extensible role table; anything outside this set is rejected
// at the identity boundary.
type Role string

const (
	RoleManager Role = "MANAGER"
	RoleSupport Role = "SUPPORT"
	RoleUser    Role = "USER"
)

// ParseRole maps a raw role literal onto the closed enum. The second
// return value is false for any unrecognized value, including the
// empty string.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleManager, RoleSupport, RoleUser:
		return Role(value), true
	default:
		return "", false
	}
}

// Identity is the verified caller identity supplied by the auth
// boundary. Services trust it completely and never re-authenticate.
type Identity struct {
	UserID int64
	Role   Role
}
