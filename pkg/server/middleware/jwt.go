package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/identity"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/respond"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/tokens"
)

// TokenParser verifies access tokens
type TokenParser interface {
	ParseAccess(raw string) (*tokens.Claims, error)
}

// UserLookup resolves the dev fallback account
type UserLookup interface {
	FetchUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// JWTAuthenticator is middleware that validates bearer tokens and stores
// the caller's identity in the request context
type JWTAuthenticator struct {
	Tokens TokenParser
	Users  UserLookup
	Logger *zap.Logger

	// DevFallback resolves requests without an Authorization header to
	// the existing DevUsername account. Requests that present a token
	// are never downgraded to the fallback.
	DevFallback bool
	DevUsername string
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(parser TokenParser, users UserLookup, logger *zap.Logger) *JWTAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTAuthenticator{Tokens: parser, Users: users, Logger: logger}
}

// WithDevFallback enables the development fallback account.
func (j *JWTAuthenticator) WithDevFallback(username string) *JWTAuthenticator {
	j.DevFallback = true
	j.DevUsername = username
	return j
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			id  *identity.Identity
			err error
		)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if !j.DevFallback {
				respond.Error(w, respond.KindAuthentication, "Authentication credentials were not provided.")
				return
			}
			id, err = j.devIdentity(r.Context())
			if err != nil {
				j.Logger.Warn("dev fallback failed", zap.String("username", j.DevUsername), zap.Error(err))
				respond.Error(w, respond.KindAuthentication, "Authentication credentials were not provided.")
				return
			}
		} else {
			raw, ok := bearerToken(authHeader)
			if !ok {
				respond.Error(w, respond.KindAuthentication, "Malformed authorization header")
				return
			}
			claims, err := j.Tokens.ParseAccess(raw)
			if err != nil {
				respond.Error(w, respond.KindAuthentication, "Given token not valid for any token type")
				return
			}
			id, err = claims.Identity()
			if err != nil {
				respond.Error(w, respond.KindAuthentication, "Given token not valid for any token type")
				return
			}
		}

		id.WithRemoteIP(ClientIP(r)).WithRequestID(RequestIDFrom(r.Context()))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

func (j *JWTAuthenticator) devIdentity(ctx context.Context) (*identity.Identity, error) {
	if j.Users == nil || j.DevUsername == "" {
		return nil, errors.New("dev fallback is not configured")
	}
	u, err := j.Users.FetchUserByUsername(ctx, j.DevUsername)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, errors.New("dev user does not exist; create it with `jobtrackerctl user create`")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, errors.New("dev user is inactive")
	}
	return identity.FromUser(u).WithSource(identity.SourceDev), nil
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
