package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/jobtracker/pkg/audit"
	"github.com/doodlesbykumbi/jobtracker/pkg/db"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/jobtracker/pkg/server/store/gorm"
)

const minPasswordLength = 8

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long: `Manage user accounts.

Administrators can only be created here; self-service registration always
creates regular users.`,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Long: `Create a user with a password.

The password is read from --password, or from the first line of stdin
when the flag is omitted.

Example:
  jobtrackerctl user create root --admin --password 's3cret-pass'
  echo 'dev-password' | jobtrackerctl user create dev`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		admin, _ := cmd.Flags().GetBool("admin")
		password, err := passwordFlag(cmd, os.Stdin)
		if err != nil {
			fail("%v", err)
		}

		role := model.RoleUser
		if admin {
			role = model.RoleAdmin
		}

		withUsers(func(users store.UsersStore, auditLog *audit.Logger) error {
			u, err := createUser(cmd.Context(), users, auditLog, args[0], email, password, role)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s %q (id %d)\n", u.Role, u.Username, u.ID)
			return nil
		})
	},
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <username> <user|admin>",
	Short: "Change the role of a user",
	Long: `Change the role of a user.

Access tokens issued before the change keep the old role until they
expire; refreshed tokens carry the new one.

Example:
  jobtrackerctl user set-role alice admin`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withUsers(func(users store.UsersStore, auditLog *audit.Logger) error {
			if err := setRole(cmd.Context(), users, auditLog, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Role of %q set to %s\n", args[0], args[1])
			return nil
		})
	},
}

var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password <username>",
	Short: "Replace the password of a user",
	Long: `Replace the password of a user.

The password is read from --password, or from the first line of stdin
when the flag is omitted.

Example:
  jobtrackerctl user set-password alice --password 'n3w-password'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := passwordFlag(cmd, os.Stdin)
		if err != nil {
			fail("%v", err)
		}
		withUsers(func(users store.UsersStore, auditLog *audit.Logger) error {
			if err := setPassword(cmd.Context(), users, auditLog, args[0], password); err != nil {
				return err
			}
			fmt.Printf("Password of %q updated\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd, userSetRoleCmd, userSetPasswordCmd)

	userCreateCmd.Flags().String("email", "", "email address")
	userCreateCmd.Flags().Bool("admin", false, "create an administrator")
	for _, c := range []*cobra.Command{userCreateCmd, userSetPasswordCmd} {
		c.Flags().String("password", "", "password (read from stdin when omitted)")
	}
}

// withUsers connects to the database and runs fn against the user store.
func withUsers(fn func(store.UsersStore, *audit.Logger) error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Logger: logger})
	if err != nil {
		fail("%v", err)
	}

	if err := fn(gormstore.NewUsersStore(database), audit.NewLogger(logger, cfg.IsAuditEnabled())); err != nil {
		fail("%v", err)
	}
}

func passwordFlag(cmd *cobra.Command, stdin io.Reader) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func createUser(ctx context.Context, users store.UsersStore, auditLog *audit.Logger, username, email, password string, role model.Role) (*model.User, error) {
	event := audit.UserAdminEvent{Username: username, Operation: "create", Detail: "role " + string(role)}
	defer func() { auditLog.Log(event) }()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	u := &model.User{
		Username: username,
		Email:    strings.TrimSpace(email),
		Role:     role,
		IsActive: true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, fmt.Errorf("user %q already exists", username)
		}
		return nil, err
	}

	event.Success = true
	return u, nil
}

func setRole(ctx context.Context, users store.UsersStore, auditLog *audit.Logger, username, role string) error {
	event := audit.UserAdminEvent{Username: username, Operation: "set-role", Detail: "role " + role}
	defer func() { auditLog.Log(event) }()

	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return fmt.Errorf("unknown role %q, expected %q or %q", role, model.RoleUser, model.RoleAdmin)
	}
	if err := users.UpdateRole(ctx, username, r); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return err
	}

	event.Success = true
	return nil
}

func setPassword(ctx context.Context, users store.UsersStore, auditLog *audit.Logger, username, password string) error {
	event := audit.UserAdminEvent{Username: username, Operation: "set-password"}
	defer func() { auditLog.Log(event) }()

	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := users.UpdatePassword(ctx, username, string(hash)); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return err
	}

	event.Success = true
	return nil
}
