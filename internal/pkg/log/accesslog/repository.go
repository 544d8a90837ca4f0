package accesslog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	SaveBatch(ctx context.Context, entries []AccessLog) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) SaveBatch(ctx context.Context, entries []AccessLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}
