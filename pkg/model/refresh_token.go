package model

import "time"

// RefreshToken is the ledger row of an issued refresh token. A refresh
// token is only honoured while its row exists, is unrevoked and unexpired.
type RefreshToken struct {
	JTI        string `gorm:"column:jti;primaryKey"`
	UserID     int64
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
}

func (t RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Usable reports whether the token may still be exchanged at now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
