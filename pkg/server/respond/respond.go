// Package respond writes the JSON bodies shared by the middleware and the
// endpoints, including the error envelope
//
//	{"error": {"kind": "...", "message": "...", "fields": {...}}}
package respond

import (
	"encoding/json"
	"net/http"
)

// Kind classifies an error response
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindThrottled      Kind = "throttled"
	KindInternal       Kind = "internal"
)

// Status returns the HTTP status code of k.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the payload under the "error" key
type ErrorBody struct {
	Kind    Kind                `json:"kind"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Error writes the error envelope with the status code of kind.
func Error(w http.ResponseWriter, kind Kind, message string) {
	JSON(w, kind.Status(), map[string]interface{}{"error": ErrorBody{Kind: kind, Message: message}})
}

// ValidationError writes a 400 envelope listing the invalid fields.
func ValidationError(w http.ResponseWriter, message string, fields map[string][]string) {
	JSON(w, http.StatusBadRequest, map[string]interface{}{"error": ErrorBody{Kind: KindValidation, Message: message, Fields: fields}})
}
