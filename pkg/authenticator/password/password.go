// Package password implements username and password login against the
// bcrypt hashes in the users table.
package password

import (
	"context"
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// Name is the registry name of the password authenticator
const Name = "password"

// Store abstracts the storage operations needed by the password authenticator
type Store interface {
	FetchUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Authenticator implements password authentication
type Authenticator struct {
	store Store
}

// New creates a new password authenticator
func New(store Store) *Authenticator {
	return &Authenticator{store: store}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate checks input.Credentials against the stored hash of
// input.Login. Unknown users, inactive users and wrong passwords all fail
// with authenticator.ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.Input) (*model.User, error) {
	if input.Login == "" || len(input.Credentials) == 0 {
		return nil, authenticator.ErrInvalidCredentials
	}

	u, err := a.store.FetchUserByUsername(ctx, input.Login)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, authenticator.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if !u.IsActive || !u.CheckPassword(string(input.Credentials)) {
		return nil, authenticator.ErrInvalidCredentials
	}
	return u, nil
}

// Status always succeeds; the database is covered by the health endpoint.
func (a *Authenticator) Status(ctx context.Context) error {
	return nil
}
