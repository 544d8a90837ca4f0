package middleware

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"garaadka-laundry/internal/iam/domain/model"
)

var ErrTokenNotFound = errors.New("access token not found")

type Repository interface {
	GetLogin(ctx context.Context, token string) (*Login, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// GetLogin loads the token row and its live owner. A soft-deleted owner
// counts as not found.
func (r *repositoryImpl) GetLogin(ctx context.Context, token string) (*Login, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	var at model.AccessToken
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&at).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if at.User.ID == 0 {
		return nil, ErrTokenNotFound
	}

	user := at.User
	at.User = model.User{}
	return &Login{User: user, AccessToken: at}, nil
}
