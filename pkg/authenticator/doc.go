// Package authenticator defines the interface shared by the login
// mechanisms of the API.
//
// # Authenticator Interface
//
// All authenticators implement the Authenticator interface:
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(ctx context.Context, input Input) (*model.User, error)
//	    Status(ctx context.Context) error
//	}
//
// # Built-in Authenticators
//
//   - password: username and bcrypt password - see [github.com/doodlesbykumbi/jobtracker/pkg/authenticator/password]
//   - google: Google ID tokens and authorization codes - see [github.com/doodlesbykumbi/jobtracker/pkg/authenticator/google]
//
// The server registers both in a Registry at startup. google is only
// enabled when a client id is configured.
package authenticator
