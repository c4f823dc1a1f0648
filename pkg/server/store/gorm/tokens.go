package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// Ensure RefreshTokensStore implements store.RefreshTokensStore
var _ store.RefreshTokensStore = (*RefreshTokensStore)(nil)

// RefreshTokensStore implements store.RefreshTokensStore using GORM
type RefreshTokensStore struct {
	db *gorm.DB
}

// NewRefreshTokensStore creates a new RefreshTokensStore
func NewRefreshTokensStore(db *gorm.DB) *RefreshTokensStore {
	return &RefreshTokensStore{db: db}
}

// SaveRefreshToken records a newly issued token.
func (s *RefreshTokensStore) SaveRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	return s.db.WithContext(ctx).Create(t).Error
}

// RotateRefreshToken revokes oldJTI and records next, holding a lock on the
// old row so two concurrent refreshes with the same token cannot both win.
func (s *RefreshTokensStore) RotateRefreshToken(ctx context.Context, oldJTI string, next *model.RefreshToken, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.RefreshToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("jti = ?", oldJTI).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrRefreshTokenNotFound
			}
			return err
		}

		switch {
		case current.RevokedAt != nil:
			return store.ErrRefreshTokenRevoked
		case !now.Before(current.ExpiresAt):
			return store.ErrRefreshTokenExpired
		case current.UserID != next.UserID:
			return store.ErrRefreshTokenNotFound
		}

		err = tx.Model(&model.RefreshToken{}).Where("jti = ?", oldJTI).Updates(map[string]interface{}{
			"revoked_at":  now,
			"replaced_by": next.JTI,
		}).Error
		if err != nil {
			return err
		}

		return tx.Create(next).Error
	})
}

// RevokeUserTokens revokes every outstanding token of userID.
func (s *RefreshTokensStore) RevokeUserTokens(ctx context.Context, userID int64, now time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now)
	return tx.RowsAffected, tx.Error
}
