package store

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// ErrRefreshTokenNotFound is returned when a refresh token was never issued
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// ErrRefreshTokenRevoked is returned when a refresh token was already used
// or revoked
var ErrRefreshTokenRevoked = errors.New("refresh token revoked")

// ErrRefreshTokenExpired is returned when a refresh token is past its expiry
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// RefreshTokensStore keeps the ledger of outstanding refresh tokens
type RefreshTokensStore interface {
	// SaveRefreshToken records a newly issued token.
	SaveRefreshToken(ctx context.Context, t *model.RefreshToken) error

	// RotateRefreshToken atomically revokes oldJTI and records next in its
	// place. Fails with ErrRefreshTokenNotFound, ErrRefreshTokenRevoked or
	// ErrRefreshTokenExpired without changing anything.
	RotateRefreshToken(ctx context.Context, oldJTI string, next *model.RefreshToken, now time.Time) error

	// RevokeUserTokens revokes every outstanding token of userID and
	// returns how many were revoked.
	RevokeUserTokens(ctx context.Context, userID int64, now time.Time) (int64, error)
}
