package fixtures

import (
	"context"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// Store abstracts the storage operations for fixture loading.
type Store interface {
	// Transaction wraps operations in a database transaction.
	// The provided function receives a transactional Store.
	// If the function returns an error, the transaction is rolled back.
	Transaction(ctx context.Context, fn func(Store) error) error

	FetchUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateRole(ctx context.Context, username string, role model.Role) error
	UpdatePassword(ctx context.Context, username string, hash string) error

	// FindApplication returns the oldest application of userID for company
	// and position, compared case-insensitively.
	// Returns store.ErrApplicationNotFound if there is none.
	FindApplication(ctx context.Context, userID int64, company, position string) (*model.JobApplication, error)
	CreateApplication(ctx context.Context, app *model.JobApplication) error
	UpdateApplication(ctx context.Context, scope store.Scope, id int64, patch store.ApplicationPatch, actorID int64) (*model.JobApplication, *model.ApplicationStatusAudit, error)
}
