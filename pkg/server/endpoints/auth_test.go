package endpoints

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/jobtracker/pkg/config"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/tokens"
)

func userWithPassword(t *testing.T, raw string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	u := *alice
	u.Password = string(hash)
	return &u
}

func (e *testEnv) pairFor(t *testing.T, u *model.User) tokens.Pair {
	t.Helper()
	e.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil).Once()
	pair, err := e.srv.Tokens.IssuePair(context.Background(), u)
	require.NoError(t, err)
	return pair
}

func TestToken(t *testing.T) {
	t.Run("issues a pair for valid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		u := userWithPassword(t, "correct horse")

		env.users.On("FetchUserByUsername", mock.Anything, "alice").Return(u, nil)
		env.users.On("TouchLastLogin", mock.Anything, int64(1), mock.Anything).Return(nil)
		env.ledger.On("SaveRefreshToken", mock.Anything, mock.MatchedBy(func(row *model.RefreshToken) bool {
			return row.UserID == 1 && row.JTI != ""
		})).Return(nil)

		w := env.do("POST", "/api/token/", `{"username":"alice","password":"correct horse"}`, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var pair tokens.Pair
		decodeBody(t, w, &pair)
		assert.NotEmpty(t, pair.Refresh)
		claims, err := env.srv.Tokens.ParseAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.Subject)
		assert.Equal(t, model.RoleUser, claims.Role)
		assert.Equal(t, 1, env.auditEvents("authn"))
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		u := userWithPassword(t, "correct horse")

		env.users.On("FetchUserByUsername", mock.Anything, "alice").Return(u, nil)

		w := env.do("POST", "/api/token/", `{"username":"alice","password":"battery staple"}`, "")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No active account found with the given credentials", decodeError(t, w).Error.Message)
		env.ledger.AssertNotCalled(t, "SaveRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)

		env.users.On("FetchUserByUsername", mock.Anything, "nobody").Return(nil, store.ErrUserNotFound)

		w := env.do("POST", "/api/token/", `{"username":"nobody","password":"whatever1"}`, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do("POST", "/api/token/", `{}`, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		fields := decodeError(t, w).Error.Fields
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "password")
	})

	t.Run("throttled", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *config.Config) { cfg.AuthRateLimit = 1 })

		w := env.do("POST", "/api/token/", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do("POST", "/api/token/", `{}`, "")
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "throttled", decodeError(t, w).Error.Kind)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})
}

func TestTokenRefresh(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		env := newTestEnv(t)
		pair := env.pairFor(t, alice)

		env.users.On("FetchUser", mock.Anything, int64(1)).Return(alice, nil)
		env.ledger.On("RotateRefreshToken", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).Return(nil)

		w := env.do("POST", "/api/token/refresh/", `{"refresh":"`+pair.Refresh+`"}`, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var next tokens.Pair
		decodeBody(t, w, &next)
		assert.NotEqual(t, pair.Refresh, next.Refresh)
		assert.Equal(t, 1, env.auditEvents("token-refresh"))
	})

	t.Run("reuse revokes every token of the user", func(t *testing.T) {
		env := newTestEnv(t)
		pair := env.pairFor(t, alice)

		env.users.On("FetchUser", mock.Anything, int64(1)).Return(alice, nil)
		env.ledger.On("RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(store.ErrRefreshTokenRevoked)
		env.ledger.On("RevokeUserTokens", mock.Anything, int64(1), mock.Anything).Return(int64(3), nil)

		w := env.do("POST", "/api/token/refresh/", `{"refresh":"`+pair.Refresh+`"}`, "")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token is invalid or expired", decodeError(t, w).Error.Message)
		reused := env.logs.FilterLoggerName("audit").FilterMessageSnippet("presented a revoked refresh token")
		require.Equal(t, 1, reused.Len())
		assert.Equal(t, zapcore.ErrorLevel, reused.All()[0].Level)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		env := newTestEnv(t)
		pair := env.pairFor(t, alice)

		w := env.do("POST", "/api/token/refresh/", `{"refresh":"`+pair.Access+`"}`, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env.ledger.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing refresh", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do("POST", "/api/token/refresh/", `{}`, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Error.Fields, "refresh")
	})
}

func TestRegister(t *testing.T) {
	t.Run("creates a regular user", func(t *testing.T) {
		env := newTestEnv(t)

		env.users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "bob" && u.Role == model.RoleUser && u.IsActive && u.CheckPassword("longenough")
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 3
		}).Return(nil)

		w := env.do("POST", "/api/register/", `{"username":" bob ","email":"bob@example.com","password":"longenough"}`, "")

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp UserResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, int64(3), resp.ID)
		assert.Equal(t, "bob", resp.Username)
		assert.Equal(t, model.RoleUser, resp.Role)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Equal(t, 1, env.auditEvents("register"))
	})

	t.Run("short password and bad email", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do("POST", "/api/register/", `{"username":"bob","email":"bob","password":"short"}`, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		fields := decodeError(t, w).Error.Fields
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "email")
		env.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate username", func(t *testing.T) {
		env := newTestEnv(t)

		env.users.On("CreateUser", mock.Anything, mock.Anything).Return(store.ErrDuplicateUsername)

		w := env.do("POST", "/api/register/", `{"username":"alice","password":"longenough"}`, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"A user with that username already exists."}, decodeError(t, w).Error.Fields["username"])
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, alice)

	env.users.On("FetchUser", mock.Anything, int64(1)).Return(alice, nil)

	w := env.do("GET", "/api/me/", "", token)

	require.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "alice", resp.Username)

	w = env.do("GET", "/api/me/", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
