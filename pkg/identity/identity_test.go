package identity

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

func TestIdentity_WithMethods(t *testing.T) {
	issued := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	id := New(42, "alice", model.RoleUser).
		WithTimes(issued, issued.Add(30*time.Minute)).
		WithRemoteIP(net.ParseIP("10.0.0.1")).
		WithRequestID("req-1")

	assert.Equal(t, int64(42), id.UserID)
	assert.Equal(t, "42", id.Subject())
	assert.Equal(t, SourceToken, id.Source)
	assert.Equal(t, "10.0.0.1", id.RemoteIP.String())
	assert.Equal(t, "req-1", id.RequestID)
	assert.Equal(t, issued.Add(30*time.Minute), id.ExpiresAt)
	assert.False(t, id.IsAdmin())
}

func TestFromUser(t *testing.T) {
	u := &model.User{ID: 7, Username: "root", Role: model.RoleAdmin}
	id := FromUser(u).WithSource(SourceDev)

	assert.True(t, id.IsAdmin())
	assert.Equal(t, "root", id.Username)
	assert.Equal(t, SourceDev, id.Source)
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()

	_, ok := Get(ctx)
	assert.False(t, ok)

	ctx = Set(ctx, New(1, "bob", model.RoleUser))
	id, ok := Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "bob", id.Username)
}
