package register

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"garaadka-laundry/internal/pkg/dbquery"
	"garaadka-laundry/internal/pkg/trail"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Entry) error
	Read(ctx context.Context, id uint) (Entry, error)
	ReadAny(ctx context.Context, id uint) (Entry, error)
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	SoftDelete(ctx context.Context, id uint, deletedBy string) error
	HardDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint, restoredBy string) error
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

func (r *repositoryImpl) Create(ctx context.Context, e *Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repositoryImpl) Read(ctx context.Context, id uint) (Entry, error) {
	return first(r.db.WithContext(ctx), id)
}

// ReadAny also finds soft-deleted entries.
func (r *repositoryImpl) ReadAny(ctx context.Context, id uint) (Entry, error) {
	return first(r.db.WithContext(ctx).Unscoped(), id)
}

func first(query *gorm.DB, id uint) (Entry, error) {
	var e Entry
	if err := query.First(&e, "register_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *repositoryImpl) List(ctx context.Context, f Filter) ([]Entry, int64, error) {
	filters := func(db *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(f.Search); s != "" {
			like := dbquery.Contains(s)
			db = db.Where("(LOWER(customer_name) LIKE ? "+dbquery.Escape+" OR phone_number LIKE ? "+dbquery.Escape+" OR LOWER(item_description) LIKE ? "+dbquery.Escape+")", like, like, like)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.From != nil {
			db = db.Where("entry_date >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("entry_date <= ?", *f.To)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Entry{}).Scopes(filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []Entry
	err := r.db.WithContext(ctx).
		Scopes(filters).
		Order("entry_date DESC").
		Order("register_id DESC").
		Limit(f.Size).
		Offset((f.Page - 1) * f.Size).
		Find(&entries).Error
	return entries, total, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	query := r.db.WithContext(ctx).Model(&Entry{}).Where("register_id = ?", id).Updates(fields)
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) SoftDelete(ctx context.Context, id uint, deletedBy string) error {
	query := r.db.WithContext(ctx).Model(&Entry{}).Where("register_id = ?", id).Updates(trail.ForDelete(deletedBy))
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) HardDelete(ctx context.Context, id uint) error {
	query := r.db.WithContext(ctx).Unscoped().Delete(&Entry{}, "register_id = ?", id)
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) Restore(ctx context.Context, id uint, restoredBy string) error {
	fields := trail.ForUpdate(map[string]any{"deleted_at": nil, "deleted_by": nil}, restoredBy)
	query := r.db.WithContext(ctx).
		Unscoped().
		Model(&Entry{}).
		Where("register_id = ? AND deleted_at IS NOT NULL", id).
		Updates(fields)
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotDeleted
	}
	return nil
}
