package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, KindNotFound, "Invalid page.")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"kind":"not_found","message":"Invalid page."}}`, rec.Body.String())
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, "invalid input", map[string][]string{"status": {"unknown status"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"kind":"validation","message":"invalid input","fields":{"status":["unknown status"]}}}`, rec.Body.String())
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, KindAuthentication.Status())
	assert.Equal(t, http.StatusForbidden, KindForbidden.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusTooManyRequests, KindThrottled.Status())
	assert.Equal(t, http.StatusInternalServerError, Kind("bogus").Status())
}
