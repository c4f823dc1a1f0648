package tokens

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store/storetest"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fixture struct {
	issuer *Issuer
	users  *storetest.MockUsersStore
	ledger *storetest.MockRefreshTokensStore
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  &storetest.MockUsersStore{},
		ledger: &storetest.MockRefreshTokensStore{},
		now:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.issuer = NewIssuer(Config{
		SecretKey:  testSecret,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, f.users, f.ledger)
	f.issuer.now = func() time.Time { return f.now }

	n := 0
	f.issuer.newJTI = func() string {
		n++
		return fmt.Sprintf("jti-%d", n)
	}
	return f
}

var ada = &model.User{ID: 7, Username: "ada", Role: model.RoleUser, IsActive: true}

func TestIssuePairAndParseAccess(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("SaveRefreshToken", mock.Anything, mock.MatchedBy(func(row *model.RefreshToken) bool {
		return row.JTI == "jti-2" && row.UserID == 7 && row.ExpiresAt.Equal(f.now.Add(24*time.Hour))
	})).Return(nil)

	pair, err := f.issuer.IssuePair(context.Background(), ada)
	require.NoError(t, err)

	claims, err := f.issuer.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, TypeAccess, claims.TokenType)

	id, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.UserID)
	assert.True(t, f.now.Add(30*time.Minute).Equal(id.ExpiresAt))

	_, err = f.issuer.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not work as access token")

	f.ledger.AssertExpectations(t)
}

func TestParseAccessRejects(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil)
	pair, err := f.issuer.IssuePair(context.Background(), ada)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		f.now = f.now.Add(31 * time.Minute)
		defer func() { f.now = f.now.Add(-31 * time.Minute) }()
		_, err := f.issuer.ParseAccess(pair.Access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewIssuer(Config{SecretKey: []byte("another-secret-another-secret-xx"), AccessTTL: time.Minute}, nil, nil)
		other.now = f.issuer.now
		_, err := other.ParseAccess(pair.Access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := Claims{TokenType: TypeAccess, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(f.now.Add(time.Hour)),
		}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = f.issuer.ParseAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.issuer.ParseAccess("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshRotates(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil)
	pair, err := f.issuer.IssuePair(context.Background(), ada)
	require.NoError(t, err)

	f.users.On("FetchUser", mock.Anything, int64(7)).Return(ada, nil)
	f.ledger.On("RotateRefreshToken", mock.Anything, "jti-2", mock.MatchedBy(func(next *model.RefreshToken) bool {
		return next.JTI == "jti-4" && next.UserID == 7
	}), f.now).Return(nil)

	next, err := f.issuer.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, next.Refresh)

	f.ledger.AssertExpectations(t)
}

func TestRefreshReuseRevokesEverything(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil)
	pair, err := f.issuer.IssuePair(context.Background(), ada)
	require.NoError(t, err)

	f.users.On("FetchUser", mock.Anything, int64(7)).Return(ada, nil)
	f.ledger.On("RotateRefreshToken", mock.Anything, "jti-2", mock.Anything, f.now).Return(store.ErrRefreshTokenRevoked)
	f.ledger.On("RevokeUserTokens", mock.Anything, int64(7), f.now).Return(int64(1), nil)

	_, err = f.issuer.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenReused)
	f.ledger.AssertCalled(t, "RevokeUserTokens", mock.Anything, int64(7), f.now)
}

func TestRefreshRejects(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil)
	pair, err := f.issuer.IssuePair(context.Background(), ada)
	require.NoError(t, err)

	t.Run("access token", func(t *testing.T) {
		_, err := f.issuer.Refresh(context.Background(), pair.Access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.On("SaveRefreshToken", mock.Anything, mock.Anything).Return(nil)
		pair, err := f.issuer.IssuePair(context.Background(), ada)
		require.NoError(t, err)

		inactive := *ada
		inactive.IsActive = false
		f.users.On("FetchUser", mock.Anything, int64(7)).Return(&inactive, nil)

		_, err = f.issuer.Refresh(context.Background(), pair.Refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
		f.ledger.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown jti", func(t *testing.T) {
		f.users.On("FetchUser", mock.Anything, int64(7)).Return(ada, nil)
		f.ledger.On("RotateRefreshToken", mock.Anything, "jti-2", mock.Anything, mock.Anything).Return(store.ErrRefreshTokenNotFound)

		_, err := f.issuer.Refresh(context.Background(), pair.Refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
