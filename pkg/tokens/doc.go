// Package tokens issues and verifies the HS256 bearer tokens of the API.
//
// A login yields a pair: a short-lived access token and a refresh token.
// Both carry the user id as "sub", the username and role, and a
// "token_type" claim that keeps one from being used as the other.
//
// Every refresh token's jti is recorded in the refresh token ledger.
// Refreshing rotates: the presented token is revoked and a new pair is
// issued in the same transaction. Presenting a token that was already
// rotated out is treated as theft, and all of the user's outstanding
// refresh tokens are revoked.
package tokens
