package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role controls which applications a user can see.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID         int64 `gorm:"primaryKey"`
	Username   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Role       Role
	IsActive   bool
	DateJoined time.Time
	LastLogin  *time.Time
}

func (u User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetPassword stores a bcrypt hash of raw.
func (u *User) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// SetUnusablePassword clears the hash so password login always fails.
// Used for accounts created through federated login.
func (u *User) SetUnusablePassword() {
	u.Password = ""
}

// CheckPassword reports whether raw matches the stored hash.
func (u *User) CheckPassword(raw string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}
