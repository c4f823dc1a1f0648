package google

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

const (
	// Name is the registry name of the Google authenticator
	Name = "google"

	// DefaultProviderURI is Google's OpenID Connect issuer
	DefaultProviderURI = "https://accounts.google.com"
)

// ErrInvalidToken is returned when an ID token or code fails verification
var ErrInvalidToken = errors.New("invalid Google credentials")

// DefaultIssuers are the issuer values Google puts in its ID tokens
var DefaultIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Config holds Google authenticator configuration
type Config struct {
	// ClientID is the OAuth client id; ID tokens must carry it as audience
	ClientID string

	// ClientSecret and RedirectURL are used to exchange authorization codes
	ClientSecret string
	RedirectURL  string

	// ProviderURI is used to discover the JWKS URI (default accounts.google.com)
	ProviderURI string

	// JWKSURI skips discovery when set
	JWKSURI string

	// PublicKeys is an inline JWKS document ({"keys": [...]}) used instead
	// of fetching keys
	PublicKeys string

	// Issuers are the accepted "iss" values (default DefaultIssuers)
	Issuers []string

	// Endpoint overrides the OAuth endpoints (default endpoints.Google)
	Endpoint oauth2.Endpoint
}

// Store abstracts the storage operations needed by the Google authenticator
type Store interface {
	GetOrCreateByEmail(ctx context.Context, email string, defaults model.User) (*model.User, bool, error)
}

// Authenticator implements Google ID token authentication
type Authenticator struct {
	store     Store
	config    Config
	client    *http.Client
	oauth     *oauth2.Config
	jwksCache *jwksCache
	now       func() time.Time
}

// Option configures an Authenticator
type Option func(*Authenticator)

// WithHTTPClient sets the client used for discovery, JWKS and code exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Authenticator) {
		a.client = client
	}
}

// New creates a new Google authenticator
func New(store Store, config Config, opts ...Option) *Authenticator {
	if config.ProviderURI == "" {
		config.ProviderURI = DefaultProviderURI
	}
	if len(config.Issuers) == 0 {
		config.Issuers = DefaultIssuers
	}
	if config.Endpoint.TokenURL == "" {
		config.Endpoint = endpoints.Google
	}

	a := &Authenticator{
		store:  store,
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     config.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		jwksCache: &jwksCache{
			keys: make(map[string]*rsa.PublicKey),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate verifies an ID token, or exchanges input.Code for one, and
// returns the matching user, creating it on first login.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.Input) (*model.User, error) {
	tokenString := string(input.Credentials)
	if tokenString == "" && input.Code != "" {
		exchanged, err := a.exchangeCode(ctx, input.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		tokenString = exchanged
	}
	if tokenString == "" {
		return nil, fmt.Errorf("%w: an ID token or authorization code is required", ErrInvalidToken)
	}

	claims, err := a.verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, err := emailFrom(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	defaults := model.User{
		FirstName: stringClaim(claims, "given_name"),
		LastName:  stringClaim(claims, "family_name"),
		Role:      model.RoleUser,
	}
	defaults.SetUnusablePassword()

	u, _, err := a.store.GetOrCreateByEmail(ctx, email, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !u.IsActive {
		return nil, authenticator.ErrInvalidCredentials
	}
	return u, nil
}

// exchangeCode trades an authorization code for the ID token of the response.
func (a *Authenticator) exchangeCode(ctx context.Context, code string) (string, error) {
	if a.config.ClientSecret == "" {
		return "", errors.New("authorization code login is not configured")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange failed: %w", err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", errors.New("token response has no id_token")
	}
	return idToken, nil
}

// verify parses and validates an ID token
func (a *Authenticator) verify(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	if a.config.ClientID == "" {
		return nil, errors.New("no client id configured")
	}

	if err := a.refreshJWKSIfNeeded(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch signing keys: %w", err)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("missing kid in token header")
		}

		key, ok := a.jwksCache.get(kid)
		if !ok {
			// Google rotates keys; try refreshing once.
			if err := a.refreshJWKS(ctx); err != nil {
				return nil, err
			}
			key, ok = a.jwksCache.get(kid)
			if !ok {
				return nil, fmt.Errorf("key %s not found", kid)
			}
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims format")
	}

	iss, _ := claims["iss"].(string)
	if !contains(a.config.Issuers, iss) {
		return nil, fmt.Errorf("invalid issuer: %s", iss)
	}

	aud, _ := claims["aud"].(string)
	audList, _ := claims["aud"].([]interface{})
	validAud := aud == a.config.ClientID
	for _, audItem := range audList {
		if s, _ := audItem.(string); s == a.config.ClientID {
			validAud = true
			break
		}
	}
	if !validAud {
		return nil, errors.New("invalid audience")
	}

	return claims, nil
}

func emailFrom(claims jwt.MapClaims) (string, error) {
	email := strings.TrimSpace(stringClaim(claims, "email"))
	if email == "" {
		return "", errors.New("token has no email claim")
	}
	// email_verified is a bool in ID tokens but a string in some responses.
	switch v := claims["email_verified"].(type) {
	case bool:
		if !v {
			return "", errors.New("email is not verified")
		}
	case string:
		if v == "false" {
			return "", errors.New("email is not verified")
		}
	}
	return email, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Status checks that signing keys can be fetched
func (a *Authenticator) Status(ctx context.Context) error {
	return a.refreshJWKS(ctx)
}
