package fixtures

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/jobtracker/pkg/server/store/gorm"
)

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)

// GormStore implements Store on top of the server's GORM stores.
type GormStore struct {
	db           *gorm.DB
	loc          *time.Location
	users        *gormstore.UsersStore
	applications *gormstore.ApplicationsStore
}

// NewGormStore creates a new GormStore. loc is the server's time zone.
func NewGormStore(db *gorm.DB, loc *time.Location) *GormStore {
	return &GormStore{
		db:           db,
		loc:          loc,
		users:        gormstore.NewUsersStore(db),
		applications: gormstore.NewApplicationsStore(db, loc),
	}
}

// Transaction wraps operations in a database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx, s.loc))
	})
}

func (s *GormStore) FetchUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.FetchUserByUsername(ctx, username)
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.users.CreateUser(ctx, u)
}

func (s *GormStore) UpdateRole(ctx context.Context, username string, role model.Role) error {
	return s.users.UpdateRole(ctx, username, role)
}

func (s *GormStore) UpdatePassword(ctx context.Context, username string, hash string) error {
	return s.users.UpdatePassword(ctx, username, hash)
}

func (s *GormStore) FindApplication(ctx context.Context, userID int64, company, position string) (*model.JobApplication, error) {
	var app model.JobApplication
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND lower(company_name) = lower(?) AND lower(position) = lower(?)", userID, company, position).
		Order("id ASC").
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (s *GormStore) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	return s.applications.CreateApplication(ctx, app)
}

func (s *GormStore) UpdateApplication(ctx context.Context, scope store.Scope, id int64, patch store.ApplicationPatch, actorID int64) (*model.JobApplication, *model.ApplicationStatusAudit, error) {
	return s.applications.UpdateApplication(ctx, scope, id, patch, actorID)
}
