package fixtures

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind names a statement type. It is written as a YAML tag.
type Kind string

const (
	KindUser        Kind = "user"
	KindApplication Kind = "application"
)

func (k Kind) Tag() string {
	return "!" + string(k)
}

// Statement is one entry of a fixture document.
type Statement interface {
	Kind() Kind
}

type User struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email,omitempty"`
	Password  string `yaml:"password,omitempty"`
	FirstName string `yaml:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty"`
	Role      string `yaml:"role,omitempty"`
}

func (User) Kind() Kind { return KindUser }

// UnmarshalYAML for User handles both scalar (just the username) and mapping forms
func (u *User) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		u.Username = value.Value
		return nil
	}
	type userAlias User
	return value.Decode((*userAlias)(u))
}

// Application belongs to the user named by User. CompanyName and Position
// identify it among that user's applications.
type Application struct {
	User         string `yaml:"user"`
	CompanyName  string `yaml:"company_name"`
	Position     string `yaml:"position"`
	Location     string `yaml:"location,omitempty"`
	AppliedDate  string `yaml:"applied_date,omitempty"`
	Status       string `yaml:"status,omitempty"`
	ContactName  string `yaml:"contact_name,omitempty"`
	ContactEmail string `yaml:"contact_email,omitempty"`
	Notes        string `yaml:"notes,omitempty"`
}

func (Application) Kind() Kind { return KindApplication }

type Statements []Statement

func (s *Statements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: a fixture document must be a sequence", value.Line)
	}

	statements := make(Statements, 0, len(value.Content))
	for _, node := range value.Content {
		switch node.Tag {
		case KindUser.Tag():
			var user User
			if err := node.Decode(&user); err != nil {
				return err
			}
			statements = append(statements, user)
		case KindApplication.Tag():
			var app Application
			if err := node.Decode(&app); err != nil {
				return err
			}
			statements = append(statements, app)
		default:
			return fmt.Errorf("line %d: unknown statement %q", node.Line, node.Tag)
		}
	}

	*s = statements
	return nil
}
