package auth

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"garaadka-laundry/internal/iam/domain/model"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAccessToken(ctx context.Context, m *model.AccessToken) error
	RevokeAccessToken(ctx context.Context, token string, at time.Time) error
	RevokeAllUserTokens(ctx context.Context, userID uint, at time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{
		db: db,
	}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateAccessToken(ctx context.Context, m *model.AccessToken) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

// RevokeAccessToken moves the expiry of a live token to at.
func (r *repositoryImpl) RevokeAccessToken(ctx context.Context, token string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.AccessToken{}).
		Where("token = ? AND expire_date > ?", token, at).
		Update("expire_date", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *repositoryImpl) RevokeAllUserTokens(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AccessToken{}).
		Where("user_id = ? AND expire_date > ?", userID, at).
		Update("expire_date", at).Error
}
