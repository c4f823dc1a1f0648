// Package server provides the HTTP server for the job tracker API.
//
// The server wires configuration, storage, token issuing and the
// authenticator registry together. It uses gorilla/mux for routing and
// gorilla/handlers for CORS, access logging and proxy headers.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db, logger, "0.0.0.0", "8000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//	    log.Fatal(err)
//	}
//
// Tests build a server around mocked stores with New instead.
//
// # Components
//
// The Server struct holds:
//
//   - ApplicationsStore, UsersStore, RefreshTokensStore and HealthStore
//   - Tokens: issues and rotates access and refresh tokens
//   - Authenticators: the password and Google login methods
//   - JWTMiddleware: bearer token validation
//   - AuthLimiter: per-client rate limit of the login endpoints
//   - Followup: the clock and threshold of the follow-up rule
//
// # Endpoints
//
// Routes are registered via the endpoints subpackage:
//
//   - /api/token/, /api/token/refresh/, /api/register/, /api/me/
//   - /social/google/ and /auth/google/
//   - /applications/ and /applications/{id}/ with audits/ and mark_followup_sent/
//   - /dashboard/
//   - /, /health and /authenticators
package server
