package authenticator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// mockAuthenticator is a simple mock for testing
type mockAuthenticator struct {
	name string
}

func (m *mockAuthenticator) Name() string {
	return m.name
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, input Input) (*model.User, error) {
	return &model.User{Username: input.Login}, nil
}

func (m *mockAuthenticator) Status(ctx context.Context) error {
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	auth := &mockAuthenticator{name: "test-auth"}

	r.Register(auth)

	got, ok := r.Get("test-auth")
	assert.True(t, ok)
	assert.Equal(t, "test-auth", got.Name())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Enable(t *testing.T) {
	r := NewRegistry()
	auth := &mockAuthenticator{name: "test-auth"}
	r.Register(auth)

	err := r.Enable("test-auth")
	assert.NoError(t, err)
	assert.True(t, r.IsEnabled("test-auth"))
}

func TestRegistry_Enable_NotFound(t *testing.T) {
	r := NewRegistry()

	err := r.Enable("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_Disable(t *testing.T) {
	r := NewRegistry()
	auth := &mockAuthenticator{name: "test-auth"}
	r.Register(auth)
	_ = r.Enable("test-auth")

	r.Disable("test-auth")
	assert.False(t, r.IsEnabled("test-auth"))
}

func TestRegistry_Installed(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "auth1"})
	r.Register(&mockAuthenticator{name: "auth2"})

	installed := r.Installed()
	assert.Len(t, installed, 2)
	assert.Contains(t, installed, "auth1")
	assert.Contains(t, installed, "auth2")
}

func TestRegistry_Enabled(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "auth1"})
	r.Register(&mockAuthenticator{name: "auth2"})
	_ = r.Enable("auth1")

	enabled := r.Enabled()
	assert.Equal(t, []string{"auth1"}, enabled)
	assert.Equal(t, []string{"auth1", "auth2"}, r.Installed())
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "password"})
	r.Register(&mockAuthenticator{name: "google"})
	_ = r.Enable("password")

	auth, ok := r.Lookup("password")
	assert.True(t, ok)
	u, err := auth.Authenticate(context.Background(), Input{Login: "ada"})
	assert.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	_, ok = r.Lookup("google")
	assert.False(t, ok, "registered but disabled")

	_, ok = r.Lookup("saml")
	assert.False(t, ok)
}

func TestRegistry_IsEnabled_NotEnabled(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "test-auth"})

	assert.False(t, r.IsEnabled("test-auth"))
}

func TestRegistry_RegisterReplacesKeepsEnabled(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "google"})
	_ = r.Enable("google")

	replacement := &mockAuthenticator{name: "google"}
	r.Register(replacement)

	got, ok := r.Lookup("google")
	assert.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, []string{"google"}, r.Installed())
}
