package store

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUsername is returned when a username is already taken
var ErrDuplicateUsername = errors.New("username already exists")

// UsersStore abstracts user account storage
type UsersStore interface {
	// FetchUser returns a user by id.
	FetchUser(ctx context.Context, id int64) (*model.User, error)

	// FetchUserByUsername returns a user by username.
	FetchUserByUsername(ctx context.Context, username string) (*model.User, error)

	// CreateUser inserts u. Returns ErrDuplicateUsername if the username is taken.
	CreateUser(ctx context.Context, u *model.User) error

	// GetOrCreateByEmail returns the user whose email matches email,
	// creating one from defaults (username = email) if none exists.
	// The bool is true when a user was created.
	GetOrCreateByEmail(ctx context.Context, email string, defaults model.User) (*model.User, bool, error)

	// UpdateRole sets the role of username.
	UpdateRole(ctx context.Context, username string, role model.Role) error

	// UpdatePassword replaces the password hash of username.
	UpdatePassword(ctx context.Context, username string, hash string) error

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
