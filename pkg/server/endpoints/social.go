package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/audit"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator/google"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/tokens"
)

// SocialLoginRequest is the body of POST /social/google/. AccessToken
// carries the Google ID token; IDToken is an alias and Code an
// authorization code to exchange.
type SocialLoginRequest struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	Code        string `json:"code"`
}

// SocialLoginResponse is returned on a successful federated login
type SocialLoginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    UserResponse `json:"user"`
}

// SocialErrorResponse keeps the shape the frontend expects on failure
type SocialErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// RegisterSocialEndpoints registers the federated login endpoints
func RegisterSocialEndpoints(s *server.Server) {
	handler := s.AuthLimiter.Middleware(handleGoogleLogin(s.Authenticators, s.Tokens, s.UsersStore, s.Audit, s.Logger))

	s.Router.Handle("/social/google/", handler).Methods("POST")
	s.Router.Handle("/auth/google/", handler).Methods("POST")
}

func handleGoogleLogin(registry *authenticator.Registry, issuer *tokens.Issuer, users store.UsersStore, auditLog *audit.Logger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(details string) {
			respondWithJSON(w, http.StatusBadRequest, SocialErrorResponse{
				Error:   "Google authentication failed",
				Details: details,
			})
		}

		var req SocialLoginRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(err.Error())
			return
		}
		token := strings.TrimSpace(req.AccessToken)
		if token == "" {
			token = strings.TrimSpace(req.IDToken)
		}
		code := strings.TrimSpace(req.Code)
		if token == "" && code == "" {
			fail("access_token, id_token or code is required")
			return
		}

		auth, ok := registry.Lookup(google.Name)
		if !ok {
			fail("Google login is not configured")
			return
		}

		event := audit.AuthenticateEvent{ClientIP: clientIP(r), AuthenticatorName: google.Name}
		u, err := auth.Authenticate(r.Context(), authenticator.Input{
			Credentials: []byte(token),
			Code:        code,
			ClientIP:    event.ClientIP,
		})
		if err != nil {
			event.ErrorMessage = err.Error()
			auditLog.Log(event)
			if errors.Is(err, google.ErrInvalidToken) || errors.Is(err, authenticator.ErrInvalidCredentials) {
				fail(err.Error())
				return
			}
			respondWithErr(w, r, logger, err)
			return
		}
		event.Username = u.Username

		pair, err := issueTokens(r, issuer, users, logger, u)
		if err != nil {
			respondWithErr(w, r, logger, err)
			return
		}
		event.Success = true
		auditLog.Log(event)

		respondWithJSON(w, http.StatusOK, SocialLoginResponse{
			Access:  pair.Access,
			Refresh: pair.Refresh,
			User:    serializeUser(u),
		})
	}
}
