// Package authz decides which job applications a caller may see or change.
//
// Admins can access every application; everyone else only their own.
package authz

import (
	"github.com/doodlesbykumbi/jobtracker/pkg/identity"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// ScopeFor returns the store scope matching id's visibility.
func ScopeFor(id identity.Identity) store.Scope {
	if id.IsAdmin() {
		return store.AllScope()
	}
	return store.OwnerScope(id.UserID)
}

// CanAccess reports whether id may read or modify app.
func CanAccess(id identity.Identity, app *model.JobApplication) bool {
	if app == nil {
		return false
	}
	return ScopeFor(id).Allows(app.UserID)
}

// OwnScope is the scope of the caller's own applications regardless of
// role. The dashboard uses it.
func OwnScope(id identity.Identity) store.Scope {
	return store.OwnerScope(id.UserID)
}
