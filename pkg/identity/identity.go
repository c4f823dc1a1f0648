package identity

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Source records how an identity was established.
type Source string

const (
	SourceToken Source = "token"
	SourceDev   Source = "dev-fallback"
)

// Identity represents the authenticated caller of a request.
type Identity struct {
	// Token claims
	UserID    int64
	Username  string
	Role      model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	Source    Source
	RemoteIP  net.IP
	RequestID string
}

// New creates an Identity for a token subject.
func New(userID int64, username string, role model.Role) *Identity {
	return &Identity{
		UserID:   userID,
		Username: username,
		Role:     role,
		Source:   SourceToken,
	}
}

// FromUser creates an Identity for a loaded user.
func FromUser(u *model.User) *Identity {
	return New(u.ID, u.Username, u.Role)
}

// WithTimes sets the issue and expiry times of the token.
func (i *Identity) WithTimes(issuedAt, expiresAt time.Time) *Identity {
	i.IssuedAt = issuedAt
	i.ExpiresAt = expiresAt
	return i
}

// WithSource sets how the identity was established.
func (i *Identity) WithSource(source Source) *Identity {
	i.Source = source
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// WithRequestID sets the request id.
func (i *Identity) WithRequestID(id string) *Identity {
	i.RequestID = id
	return i
}

// IsAdmin returns true if the identity can see every user's data.
func (i *Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Subject is the user id as carried in the token "sub" claim.
func (i *Identity) Subject() string {
	return strconv.FormatInt(i.UserID, 10)
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
