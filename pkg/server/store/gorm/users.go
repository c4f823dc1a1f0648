package gorm

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db, now: time.Now}
}

func userOrNotFound(u *model.User, err error) (*model.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// FetchUser returns a user by id.
func (s *UsersStore) FetchUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	return userOrNotFound(&u, s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error)
}

// FetchUserByUsername returns a user by username.
func (s *UsersStore) FetchUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	return userOrNotFound(&u, s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error)
}

// CreateUser inserts u with defaults for unset role, activity and join date.
func (s *UsersStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.create(s.db.WithContext(ctx), u)
}

func (s *UsersStore) create(db *gorm.DB, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = s.now()
	}
	u.IsActive = true

	if err := db.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// GetOrCreateByEmail looks a user up by email (case insensitive) and
// creates one named after the email when none matches. An account whose
// username equals the email but whose email differs is never returned;
// creation then fails with ErrDuplicateUsername.
func (s *UsersStore) GetOrCreateByEmail(ctx context.Context, email string, defaults model.User) (*model.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, errors.New("email is required")
	}

	find := func() (*model.User, error) {
		var u model.User
		err := s.db.WithContext(ctx).
			Where("lower(email) = lower(?)", email).
			Order("id ASC").
			First(&u).Error
		return userOrNotFound(&u, err)
	}

	u, err := find()
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, false, err
	}

	created := defaults
	created.ID = 0
	created.Username = email
	created.Email = email
	if err := s.create(s.db.WithContext(ctx), &created); err != nil {
		if !errors.Is(err, store.ErrDuplicateUsername) {
			return nil, false, err
		}
		// Either a concurrent first login for the same email won, or the
		// username belongs to an unrelated account.
		u, findErr := find()
		if errors.Is(findErr, store.ErrUserNotFound) {
			return nil, false, err
		}
		return u, false, findErr
	}
	return &created, true, nil
}

func (s *UsersStore) updateByUsername(ctx context.Context, username string, column string, value interface{}) error {
	tx := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Update(column, value)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// UpdateRole sets the role of username.
func (s *UsersStore) UpdateRole(ctx context.Context, username string, role model.Role) error {
	if !role.Valid() {
		return errors.New("invalid role: " + string(role))
	}
	return s.updateByUsername(ctx, username, "role", role)
}

// UpdatePassword replaces the password hash of username.
func (s *UsersStore) UpdatePassword(ctx context.Context, username string, hash string) error {
	return s.updateByUsername(ctx, username, "password", hash)
}

// TouchLastLogin records a successful login.
func (s *UsersStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}
