package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/doodlesbykumbi/jobtracker/pkg/identity"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for tokens that fail verification
	ErrInvalidToken = errors.New("token is invalid or expired")

	// ErrTokenReused is returned when a rotated-out refresh token is presented
	ErrTokenReused = errors.New("refresh token was already used")
)

// Claims are the claims of both token types
type Claims struct {
	TokenType string     `json:"token_type"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Identity builds the request identity the claims describe.
func (c *Claims) Identity() (*identity.Identity, error) {
	userID, err := c.UserID()
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	id := identity.New(userID, c.Username, c.Role)
	if c.IssuedAt != nil && c.ExpiresAt != nil {
		id.WithTimes(c.IssuedAt.Time, c.ExpiresAt.Time)
	}
	return id, nil
}

// Pair is the response body of the token endpoints
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Config holds the signing key and lifetimes
type Config struct {
	SecretKey  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer mints, verifies and rotates tokens
type Issuer struct {
	config  Config
	users   store.UsersStore
	ledger  store.RefreshTokensStore
	now     func() time.Time
	newJTI  func() string
	method  jwt.SigningMethod
	methods []string
}

// NewIssuer creates an Issuer. users is used on refresh to pick up role
// changes and deactivation.
func NewIssuer(config Config, users store.UsersStore, ledger store.RefreshTokensStore) *Issuer {
	return &Issuer{
		config:  config,
		users:   users,
		ledger:  ledger,
		now:     time.Now,
		newJTI:  uuid.NewString,
		method:  jwt.SigningMethodHS256,
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}
}

func (i *Issuer) sign(u *model.User, tokenType string, jti string, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		TokenType: tokenType,
		Username:  u.Username,
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.config.SecretKey)
}

// mint signs a pair and returns the ledger row of its refresh token.
func (i *Issuer) mint(u *model.User) (Pair, *model.RefreshToken, error) {
	now := i.now().Truncate(time.Second)

	access, err := i.sign(u, TypeAccess, i.newJTI(), now, i.config.AccessTTL)
	if err != nil {
		return Pair{}, nil, fmt.Errorf("signing access token: %w", err)
	}

	row := &model.RefreshToken{
		JTI:       i.newJTI(),
		UserID:    u.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.config.RefreshTTL),
	}
	refresh, err := i.sign(u, TypeRefresh, row.JTI, now, i.config.RefreshTTL)
	if err != nil {
		return Pair{}, nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return Pair{Access: access, Refresh: refresh}, row, nil
}

// IssuePair mints a pair for u and records its refresh token.
func (i *Issuer) IssuePair(ctx context.Context, u *model.User) (Pair, error) {
	pair, row, err := i.mint(u)
	if err != nil {
		return Pair{}, err
	}
	if err := i.ledger.SaveRefreshToken(ctx, row); err != nil {
		return Pair{}, fmt.Errorf("recording refresh token: %w", err)
	}
	return pair, nil
}

func (i *Issuer) parse(raw string, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return i.config.SecretKey, nil
	},
		jwt.WithValidMethods(i.methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, tokenType, claims.TokenType)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}
	return claims, nil
}

// ParseAccess verifies an access token.
func (i *Issuer) ParseAccess(raw string) (*Claims, error) {
	return i.parse(raw, TypeAccess)
}

// Refresh exchanges a refresh token for a new pair, revoking the old one.
func (i *Issuer) Refresh(ctx context.Context, raw string) (Pair, error) {
	claims, err := i.parse(raw, TypeRefresh)
	if err != nil {
		return Pair{}, err
	}
	if claims.ID == "" {
		return Pair{}, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	userID, _ := claims.UserID()

	u, err := i.users.FetchUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Pair{}, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return Pair{}, err
	}
	if !u.IsActive {
		return Pair{}, fmt.Errorf("%w: user is inactive", ErrInvalidToken)
	}

	pair, next, err := i.mint(u)
	if err != nil {
		return Pair{}, err
	}

	err = i.ledger.RotateRefreshToken(ctx, claims.ID, next, i.now())
	switch {
	case err == nil:
		return pair, nil
	case errors.Is(err, store.ErrRefreshTokenRevoked):
		if _, rerr := i.ledger.RevokeUserTokens(ctx, u.ID, i.now()); rerr != nil {
			return Pair{}, fmt.Errorf("revoking tokens after reuse: %w", rerr)
		}
		return Pair{}, ErrTokenReused
	case errors.Is(err, store.ErrRefreshTokenNotFound), errors.Is(err, store.ErrRefreshTokenExpired):
		return Pair{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	default:
		return Pair{}, err
	}
}
