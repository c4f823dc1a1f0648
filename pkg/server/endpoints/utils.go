package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/identity"
	"github.com/doodlesbykumbi/jobtracker/pkg/query"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/middleware"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/respond"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/validation"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

func respondWithError(w http.ResponseWriter, kind respond.Kind, message string) {
	respond.Error(w, kind, message)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	respond.JSON(w, code, payload)
}

// respondWithErr classifies err and writes the matching envelope. Errors
// without a known classification are logged and reported as internal.
func respondWithErr(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respond.ValidationError(w, "Invalid input.", verr.Fields)
	case errors.Is(err, query.ErrInvalidPage):
		respondWithError(w, respond.KindNotFound, "Invalid page.")
	case errors.Is(err, store.ErrApplicationNotFound), errors.Is(err, store.ErrUserNotFound):
		respondWithError(w, respond.KindNotFound, "Not found.")
	case errors.Is(err, store.ErrDuplicateUsername):
		respondWithError(w, respond.KindConflict, "A user with that username already exists.")
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		respondWithError(w, respond.KindInternal, "Internal server error.")
	}
}

// decodeJSON reads a JSON object body into dst. Malformed bodies are
// reported as validation errors.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return validation.Field("non_field_errors", "Request body is too large.")
	}
	if len(body) == 0 {
		return validation.Field("non_field_errors", "No data provided.")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validation.Field("non_field_errors", "JSON parse error - "+err.Error())
	}
	return nil
}

// callerIdentity returns the identity stored by the JWT middleware.
func callerIdentity(r *http.Request) (*identity.Identity, bool) {
	id, ok := identity.Get(r.Context())
	return id, ok && id != nil
}

// requireIdentity writes a 401 and returns false when no identity is present.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := callerIdentity(r)
	if !ok {
		respondWithError(w, respond.KindAuthentication, "Authentication credentials were not provided.")
	}
	return id, ok
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// absoluteURL rebuilds the request URL with scheme and host.
func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}
	return &u
}

func clientIP(r *http.Request) string {
	if ip := middleware.ClientIP(r); ip != nil {
		return ip.String()
	}
	return r.RemoteAddr
}
