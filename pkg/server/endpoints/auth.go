package endpoints

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/audit"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator/password"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/respond"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/tokens"
	"github.com/doodlesbykumbi/jobtracker/pkg/validation"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 150
)

// UserResponse is the public profile of an account
type UserResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
}

func serializeUser(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// TokenRequest is the body of POST /api/token/
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/token/refresh/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RegisterRequest is the body of POST /api/register/
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAuthEndpoints registers the token, registration and profile endpoints
func RegisterAuthEndpoints(s *server.Server) {
	apiRouter := s.Router.PathPrefix("/api").Subrouter()
	limit := s.AuthLimiter.Middleware

	apiRouter.Handle("/token/", limit(handleToken(s.Authenticators, s.Tokens, s.UsersStore, s.Audit, s.Logger))).Methods("POST")
	apiRouter.Handle("/token/refresh/", limit(handleTokenRefresh(s.Tokens, s.Audit, s.Logger))).Methods("POST")
	apiRouter.Handle("/register/", limit(handleRegister(s.UsersStore, s.Audit, s.Logger))).Methods("POST")
	apiRouter.Handle("/me/", s.JWTMiddleware.Middleware(handleMe(s.UsersStore, s.Logger))).Methods("GET")
}

// issueTokens mints a pair for u after a successful login and records the login time.
func issueTokens(r *http.Request, issuer *tokens.Issuer, users store.UsersStore, logger *zap.Logger, u *model.User) (tokens.Pair, error) {
	pair, err := issuer.IssuePair(r.Context(), u)
	if err != nil {
		return tokens.Pair{}, err
	}
	if err := users.TouchLastLogin(r.Context(), u.ID, time.Now()); err != nil {
		logger.Warn("failed to record last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return pair, nil
}

func handleToken(registry *authenticator.Registry, issuer *tokens.Issuer, users store.UsersStore, auditLog *audit.Logger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithErr(w, r, logger, err)
			return
		}

		var result validation.Result
		if strings.TrimSpace(req.Username) == "" {
			result.Add("username", "This field is required.")
		}
		if req.Password == "" {
			result.Add("password", "This field is required.")
		}
		if err := result.Err(); err != nil {
			respondWithErr(w, r, logger, err)
			return
		}

		auth, ok := registry.Lookup(password.Name)
		if !ok {
			respondWithError(w, respond.KindForbidden, "Password login is disabled.")
			return
		}

		event := audit.AuthenticateEvent{
			Username:          req.Username,
			ClientIP:          clientIP(r),
			AuthenticatorName: password.Name,
		}
		u, err := auth.Authenticate(r.Context(), authenticator.Input{
			Login:       req.Username,
			Credentials: []byte(req.Password),
			ClientIP:    event.ClientIP,
		})
		if err != nil {
			event.ErrorMessage = err.Error()
			auditLog.Log(event)
			if errors.Is(err, authenticator.ErrInvalidCredentials) {
				respondWithError(w, respond.KindAuthentication, "No active account found with the given credentials")
				return
			}
			respondWithErr(w, r, logger, err)
			return
		}

		pair, err := issueTokens(r, issuer, users, logger, u)
		if err != nil {
			respondWithErr(w, r, logger, err)
			return
		}
		event.Success = true
		auditLog.Log(event)

		respondWithJSON(w, http.StatusOK, pair)
	}
}

func handleTokenRefresh(issuer *tokens.Issuer, auditLog *audit.Logger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithErr(w, r, logger, err)
			return
		}
		if strings.TrimSpace(req.Refresh) == "" {
			respondWithErr(w, r, logger, validation.Field("refresh", "This field is required."))
			return
		}

		event := audit.TokenRefreshEvent{ClientIP: clientIP(r)}
		pair, err := issuer.Refresh(r.Context(), strings.TrimSpace(req.Refresh))
		if err != nil {
			event.ErrorMessage = err.Error()
			event.Reused = errors.Is(err, tokens.ErrTokenReused)
			auditLog.Log(event)
			if errors.Is(err, tokens.ErrInvalidToken) || event.Reused {
				respondWithError(w, respond.KindAuthentication, "Token is invalid or expired")
				return
			}
			respondWithErr(w, r, logger, err)
			return
		}

		if claims, err := issuer.ParseAccess(pair.Access); err == nil {
			event.UserID = claims.Subject
		}
		event.Success = true
		auditLog.Log(event)

		respondWithJSON(w, http.StatusOK, pair)
	}
}

func validateRegistration(req *RegisterRequest) error {
	var result validation.Result

	req.Username = strings.TrimSpace(req.Username)
	switch {
	case req.Username == "":
		result.Add("username", "This field is required.")
	case utf8.RuneCountInString(req.Username) > maxUsernameLength:
		result.Add("username", "Ensure this field has no more than 150 characters.")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email != "" {
		addr, err := mail.ParseAddress(req.Email)
		if err != nil || addr.Address != req.Email || len(req.Email) > maxEmailLength {
			result.Add("email", "Enter a valid email address.")
		}
	}

	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		result.Add("password", "Ensure this field has at least 8 characters.")
	}
	return result.Err()
}

func handleRegister(users store.UsersStore, auditLog *audit.Logger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithErr(w, r, logger, err)
			return
		}
		if err := validateRegistration(&req); err != nil {
			respondWithErr(w, r, logger, err)
			return
		}

		u := &model.User{
			Username: req.Username,
			Email:    req.Email,
			Role:     model.RoleUser,
			IsActive: true,
		}
		if err := u.SetPassword(req.Password); err != nil {
			respondWithErr(w, r, logger, err)
			return
		}

		event := audit.RegisterEvent{Username: req.Username, ClientIP: clientIP(r)}
		if err := users.CreateUser(r.Context(), u); err != nil {
			event.ErrorMessage = err.Error()
			auditLog.Log(event)
			if errors.Is(err, store.ErrDuplicateUsername) {
				respondWithErr(w, r, logger, validation.Field("username", "A user with that username already exists."))
				return
			}
			respondWithErr(w, r, logger, err)
			return
		}
		event.Success = true
		auditLog.Log(event)

		respondWithJSON(w, http.StatusCreated, serializeUser(u))
	}
}

func handleMe(users store.UsersStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		u, err := users.FetchUser(r.Context(), id.UserID)
		if err != nil {
			respondWithErr(w, r, logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, serializeUser(u))
	}
}
