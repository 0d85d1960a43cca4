package permissions

import "strings"

// Principal is the authenticated actor a request is evaluated for.
// An empty UserID denotes an anonymous caller.
type Principal struct {
	UserID      string
	Username    string
	GroupIDs    []string
	Permissions Set
}

// Anonymous returns a principal with no identity, groups or permissions.
func Anonymous() Principal {
	return Principal{Permissions: Set{}}
}

// IsAnonymous reports whether the principal carries no identity.
func (p Principal) IsAnonymous() bool {
	return strings.TrimSpace(p.UserID) == ""
}

// Has reports whether the principal holds the global permission.
func (p Principal) Has(permissionID string) bool {
	if p.IsAnonymous() {
		return false
	}
	return p.Permissions.Has(permissionID)
}
