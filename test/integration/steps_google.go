package integration

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// FakeGoogleClientID is the audience the test server expects
	FakeGoogleClientID = "jobtracker-test.apps.googleusercontent.com"

	fakeGoogleKeyID   = "test-key-1"
	fakeGoogleJWKSURI = "https://www.googleapis.com/oauth2/v3/certs"
)

// FakeGoogle plays Google's OpenID provider: it answers discovery and JWKS
// requests and signs ID tokens with its own key.
type FakeGoogle struct {
	key  *rsa.PrivateKey
	jwks []byte
}

// NewFakeGoogle generates a signing key and its JWKS document.
func NewFakeGoogle() (*FakeGoogle, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	jwks, err := json.Marshal(map[string]interface{}{
		"keys": []map[string]interface{}{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": fakeGoogleKeyID,
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	if err != nil {
		return nil, err
	}
	return &FakeGoogle{key: key, jwks: jwks}, nil
}

// Client returns an HTTP client whose requests are answered by the fake.
func (g *FakeGoogle) Client() *http.Client {
	return &http.Client{Transport: g}
}

// RoundTrip implements http.RoundTripper.
func (g *FakeGoogle) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	switch {
	case strings.HasSuffix(req.URL.Path, "/.well-known/openid-configuration"):
		body = []byte(fmt.Sprintf(`{"issuer":"https://accounts.google.com","jwks_uri":%q}`, fakeGoogleJWKSURI))
	case req.URL.String() == fakeGoogleJWKSURI:
		body = g.jwks
	default:
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

// IDToken signs an ID token for email with the given audience.
func (g *FakeGoogle) IDToken(email, audience string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            audience,
		"sub":            "google-" + email,
		"email":          email,
		"email_verified": true,
		"given_name":     "Test",
		"family_name":    "User",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	})
	token.Header["kid"] = fakeGoogleKeyID
	return token.SignedString(g.key)
}

func (s *StepsContext) googleSignsAnIDTokenFor(email, audience string) error {
	token, err := s.tc.Google.IDToken(email, audience)
	if err != nil {
		return err
	}
	s.googleToken = token
	return nil
}

func (s *StepsContext) iLogInWithGoogleAt(path string) error {
	body, _ := json.Marshal(map[string]string{"access_token": s.googleToken})
	if err := s.request("POST", path, string(body), ""); err != nil {
		return err
	}
	if s.response.StatusCode == http.StatusOK {
		var resp struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}
		if err := json.Unmarshal(s.responseBody, &resp); err != nil {
			return err
		}
		s.access, s.refresh = resp.Access, resp.Refresh
	}
	return nil
}
