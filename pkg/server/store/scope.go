package store

// Scope limits the applications a store call may read or change.
// Build it from the caller's identity with authz.ScopeFor.
type Scope struct {
	// UserID is the owner whose applications are visible
	UserID int64
	// All makes every user's applications visible
	All bool
}

// OwnerScope sees only userID's applications.
func OwnerScope(userID int64) Scope {
	return Scope{UserID: userID}
}

// AllScope sees every application.
func AllScope() Scope {
	return Scope{All: true}
}

// Allows reports whether an application owned by ownerID is in scope.
func (s Scope) Allows(ownerID int64) bool {
	return s.All || s.UserID == ownerID
}
