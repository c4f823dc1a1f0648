package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	var r Result
	assert.True(t, r.IsValid())
	assert.NoError(t, r.Err())

	r.Add("status", "unknown value")
	r.Add("month", "must be between 1 and 12")
	r.Add("month", "requires year")
	assert.False(t, r.IsValid())

	err := r.Err()
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"must be between 1 and 12", "requires year"}, verr.Fields["month"])
	assert.Equal(t, "invalid input: month: must be between 1 and 12; requires year, status: unknown value", err.Error())
}

func TestField(t *testing.T) {
	err := Field("password", "too short")
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string][]string{"password": {"too short"}}, verr.Fields)
}
