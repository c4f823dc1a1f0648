package google

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwksTTL = 5 * time.Minute

// jwksCache caches JWKS keys
type jwksCache struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

func (c *jwksCache) get(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	return key, ok
}

func (c *jwksCache) expired(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return now.After(c.expiresAt)
}

func (c *jwksCache) set(keys map[string]*rsa.PublicKey, expiresAt time.Time) {
	c.mu.Lock()
	c.keys = keys
	c.expiresAt = expiresAt
	c.mu.Unlock()
}

// refreshJWKSIfNeeded refreshes JWKS if cache is expired
func (a *Authenticator) refreshJWKSIfNeeded(ctx context.Context) error {
	if a.jwksCache.expired(a.now()) {
		return a.refreshJWKS(ctx)
	}
	return nil
}

// refreshJWKS fetches fresh JWKS from the provider or uses inline public keys
func (a *Authenticator) refreshJWKS(ctx context.Context) error {
	if a.config.PublicKeys != "" {
		return a.parseJWKSBody([]byte(a.config.PublicKeys))
	}

	jwksURI := a.config.JWKSURI
	if jwksURI == "" {
		discoveryURL := strings.TrimSuffix(a.config.ProviderURI, "/") + "/.well-known/openid-configuration"
		body, err := a.get(ctx, discoveryURL)
		if err != nil {
			return fmt.Errorf("failed to fetch OIDC discovery: %w", err)
		}

		var discovery struct {
			JWKSURI string `json:"jwks_uri"`
		}
		if err := json.Unmarshal(body, &discovery); err != nil {
			return fmt.Errorf("failed to parse OIDC discovery: %w", err)
		}
		jwksURI = discovery.JWKSURI
	}

	if jwksURI == "" {
		return errors.New("no JWKS URI configured")
	}

	body, err := a.get(ctx, jwksURI)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	return a.parseJWKSBody(body)
}

func (a *Authenticator) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// parseJWKSBody parses JWKS JSON and populates the key cache
func (a *Authenticator) parseJWKSBody(body []byte) error {
	var jwks struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(body, &jwks); err != nil {
		return fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, keyData := range jwks.Keys {
		var keyInfo struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		}
		if err := json.Unmarshal(keyData, &keyInfo); err != nil {
			continue
		}
		if keyInfo.Kty != "RSA" {
			continue
		}

		pubKey, err := parseRSAPublicKey(keyInfo.N, keyInfo.E)
		if err != nil {
			continue
		}
		keys[keyInfo.Kid] = pubKey
	}

	a.jwksCache.set(keys, a.now().Add(jwksTTL))
	return nil
}

// parseRSAPublicKey parses an RSA public key from JWK components
func parseRSAPublicKey(nBase64, eBase64 string) (*rsa.PublicKey, error) {
	nBytes, err := jwt.NewParser().DecodeSegment(nBase64)
	if err != nil {
		return nil, err
	}

	eBytes, err := jwt.NewParser().DecodeSegment(eBase64)
	if err != nil {
		return nil, err
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
