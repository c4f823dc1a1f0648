package password

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store/storetest"
)

func userWithPassword(t *testing.T, raw string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.User{ID: 1, Username: "ada", Password: string(hash), Role: model.RoleUser, IsActive: true}
}

func TestAuthenticate(t *testing.T) {
	active := userWithPassword(t, "correct horse")
	inactive := userWithPassword(t, "correct horse")
	inactive.IsActive = false

	tests := []struct {
		name     string
		login    string
		password string
		user     *model.User
		fetchErr error
		wantErr  error
	}{
		{name: "valid", login: "ada", password: "correct horse", user: active},
		{name: "wrong password", login: "ada", password: "battery staple", user: active, wantErr: authenticator.ErrInvalidCredentials},
		{name: "inactive", login: "ada", password: "correct horse", user: inactive, wantErr: authenticator.ErrInvalidCredentials},
		{name: "unknown user", login: "ada", password: "correct horse", fetchErr: store.ErrUserNotFound, wantErr: authenticator.ErrInvalidCredentials},
		{name: "empty password", login: "ada", password: "", wantErr: authenticator.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &storetest.MockUsersStore{}
			if tt.user != nil || tt.fetchErr != nil {
				users.On("FetchUserByUsername", mock.Anything, tt.login).Return(tt.user, tt.fetchErr)
			}

			u, err := New(users).Authenticate(context.Background(), authenticator.Input{
				Login:       tt.login,
				Credentials: []byte(tt.password),
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada", u.Username)
		})
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	users := &storetest.MockUsersStore{}
	users.On("FetchUserByUsername", mock.Anything, "ada").Return(nil, errors.New("connection refused"))

	_, err := New(users).Authenticate(context.Background(), authenticator.Input{Login: "ada", Credentials: []byte("x")})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, authenticator.ErrInvalidCredentials))
}
