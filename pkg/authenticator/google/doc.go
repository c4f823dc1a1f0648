// Package google implements federated login with Google ID tokens.
//
// A client either sends the ID token it obtained from Google Sign-In, or
// an authorization code which is exchanged for one using the configured
// client secret. The ID token must be an RS256 JWT signed by one of
// Google's published keys, issued by accounts.google.com, addressed to
// the configured client id, unexpired, and carry an email.
//
// Signing keys are discovered from {provider-uri}/.well-known/openid-configuration
// and cached for five minutes. All network calls finish before the user
// store is touched, and nothing is written when verification fails.
package google
