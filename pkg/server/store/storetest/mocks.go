// Package storetest provides testify mocks of the store interfaces for
// tests in other packages.
package storetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

var (
	_ store.ApplicationsStore  = (*MockApplicationsStore)(nil)
	_ store.UsersStore         = (*MockUsersStore)(nil)
	_ store.RefreshTokensStore = (*MockRefreshTokensStore)(nil)
	_ store.HealthStore        = (*MockHealthStore)(nil)
)

// MockApplicationsStore implements store.ApplicationsStore using testify/mock
type MockApplicationsStore struct {
	mock.Mock
}

func (m *MockApplicationsStore) ListApplications(ctx context.Context, scope store.Scope, filter store.ApplicationFilter, page store.Page) ([]model.JobApplication, int64, error) {
	args := m.Called(ctx, scope, filter, page)
	apps, _ := args.Get(0).([]model.JobApplication)
	return apps, args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationsStore) FetchApplication(ctx context.Context, scope store.Scope, id int64) (*model.JobApplication, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.JobApplication), args.Error(1)
}

func (m *MockApplicationsStore) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationsStore) UpdateApplication(ctx context.Context, scope store.Scope, id int64, patch store.ApplicationPatch, actorID int64) (*model.JobApplication, *model.ApplicationStatusAudit, error) {
	args := m.Called(ctx, scope, id, patch, actorID)
	app, _ := args.Get(0).(*model.JobApplication)
	audit, _ := args.Get(1).(*model.ApplicationStatusAudit)
	return app, audit, args.Error(2)
}

func (m *MockApplicationsStore) DeleteApplication(ctx context.Context, scope store.Scope, id int64) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockApplicationsStore) MarkFollowupSent(ctx context.Context, scope store.Scope, id int64, at time.Time) (*model.JobApplication, error) {
	args := m.Called(ctx, scope, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.JobApplication), args.Error(1)
}

func (m *MockApplicationsStore) ListAudits(ctx context.Context, scope store.Scope, id int64) ([]model.ApplicationStatusAudit, error) {
	args := m.Called(ctx, scope, id)
	audits, _ := args.Get(0).([]model.ApplicationStatusAudit)
	return audits, args.Error(1)
}

func (m *MockApplicationsStore) StatusCounts(ctx context.Context, scope store.Scope) ([]store.StatusCount, error) {
	args := m.Called(ctx, scope)
	counts, _ := args.Get(0).([]store.StatusCount)
	return counts, args.Error(1)
}

func (m *MockApplicationsStore) CountNeedingFollowup(ctx context.Context, scope store.Scope, cutoff model.Date) (int64, error) {
	args := m.Called(ctx, scope, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockUsersStore implements store.UsersStore using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) FetchUser(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FetchUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUsersStore) GetOrCreateByEmail(ctx context.Context, email string, defaults model.User) (*model.User, bool, error) {
	args := m.Called(ctx, email, defaults)
	u, _ := args.Get(0).(*model.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *MockUsersStore) UpdateRole(ctx context.Context, username string, role model.Role) error {
	args := m.Called(ctx, username, role)
	return args.Error(0)
}

func (m *MockUsersStore) UpdatePassword(ctx context.Context, username string, hash string) error {
	args := m.Called(ctx, username, hash)
	return args.Error(0)
}

func (m *MockUsersStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockRefreshTokensStore implements store.RefreshTokensStore using testify/mock
type MockRefreshTokensStore struct {
	mock.Mock
}

func (m *MockRefreshTokensStore) SaveRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRefreshTokensStore) RotateRefreshToken(ctx context.Context, oldJTI string, next *model.RefreshToken, now time.Time) error {
	args := m.Called(ctx, oldJTI, next, now)
	return args.Error(0)
}

func (m *MockRefreshTokensStore) RevokeUserTokens(ctx context.Context, userID int64, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockHealthStore implements store.HealthStore using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
