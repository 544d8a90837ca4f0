package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"garaadka-laundry/internal/pkg/dberr"
	"garaadka-laundry/internal/pkg/trail"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *User) error
	Read(ctx context.Context, user User) (User, error)
	List(ctx context.Context, page, pageSize int) ([]User, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint, deletedBy string) error
	CountLive(ctx context.Context) (int64, error)
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

func (r *repositoryImpl) Create(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if dberr.IsUniqueViolation(err) {
		return ErrUsernameDuplicated
	}
	return err
}

// Read looks a live user up by ID, then Username, then Email.
func (r *repositoryImpl) Read(ctx context.Context, user User) (User, error) {
	query := r.db.WithContext(ctx)
	switch {
	case user.ID != 0:
		query = query.Where("id = ?", user.ID)
	case user.Username != "":
		query = query.Where("username = ?", user.Username)
	case user.Email != "":
		query = query.Where("email = ?", user.Email)
	default:
		return User{}, ErrInvalidInput
	}

	var found User
	if err := query.First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return found, nil
}

func (r *repositoryImpl) List(ctx context.Context, page, pageSize int) ([]User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := r.db.WithContext(ctx).
		Order("id").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	return users, total, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrNothingToUpdate
	}
	query := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if query.Error != nil {
		if dberr.IsUniqueViolation(query.Error) {
			return ErrUsernameDuplicated
		}
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uint, deletedBy string) error {
	query := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(trail.ForDelete(deletedBy))
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) CountLive(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error
	return total, err
}
