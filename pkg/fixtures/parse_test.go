package fixtures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("users and applications", func(t *testing.T) {
		statements, err := Parse(strings.NewReader(`
- !user
  username: alice
  email: alice@example.com
  password: correct horse
- !user bob
- !application
  user: alice
  company_name: Acme
  position: Engineer
  applied_date: 2025-03-01
  status: phone_screen
`))
		require.NoError(t, err)
		require.Len(t, statements, 3)

		assert.Equal(t, User{Username: "alice", Email: "alice@example.com", Password: "correct horse"}, statements[0])
		assert.Equal(t, User{Username: "bob"}, statements[1])
		assert.Equal(t, Application{
			User:        "alice",
			CompanyName: "Acme",
			Position:    "Engineer",
			AppliedDate: "2025-03-01",
			Status:      "phone_screen",
		}, statements[2])
		assert.Equal(t, KindApplication, statements[2].Kind())
	})

	t.Run("empty document", func(t *testing.T) {
		statements, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, statements)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := Parse(strings.NewReader("- !variable db-password\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown statement "!variable"`)
	})

	t.Run("not a sequence", func(t *testing.T) {
		_, err := Parse(strings.NewReader("username: alice\n"))
		assert.Error(t, err)
	})
}
