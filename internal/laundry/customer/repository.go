package customer

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"garaadka-laundry/internal/pkg/dbquery"
	"garaadka-laundry/internal/pkg/dberr"
	"garaadka-laundry/internal/pkg/trail"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, c *Customer) error
	Read(ctx context.Context, id uint) (Customer, error)
	List(ctx context.Context, f Filter) ([]Customer, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint, deletedBy string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, c *Customer) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if dberr.IsUniqueViolation(err) {
		return ErrPhoneDuplicated
	}
	return err
}

func (r *repositoryImpl) Read(ctx context.Context, id uint) (Customer, error) {
	var c Customer
	if err := r.db.WithContext(ctx).First(&c, "customer_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *repositoryImpl) List(ctx context.Context, f Filter) ([]Customer, int64, error) {
	search := func(db *gorm.DB) *gorm.DB {
		s := strings.TrimSpace(f.Search)
		if s == "" {
			return db
		}
		like := dbquery.Contains(s)
		return db.Where("(LOWER(customer_name) LIKE ? "+dbquery.Escape+" OR phone_number LIKE ? "+dbquery.Escape+")", like, like)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Customer{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []Customer
	err := r.db.WithContext(ctx).
		Scopes(search).
		Order("customer_name").
		Order("customer_id").
		Limit(f.Size).
		Offset((f.Page - 1) * f.Size).
		Find(&customers).Error
	return customers, total, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	query := r.db.WithContext(ctx).Model(&Customer{}).Where("customer_id = ?", id).Updates(fields)
	if query.Error != nil {
		if dberr.IsUniqueViolation(query.Error) {
			return ErrPhoneDuplicated
		}
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uint, deletedBy string) error {
	query := r.db.WithContext(ctx).Model(&Customer{}).Where("customer_id = ?", id).Updates(trail.ForDelete(deletedBy))
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
