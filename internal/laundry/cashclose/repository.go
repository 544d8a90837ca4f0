package cashclose

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/laundry/register"
	"garaadka-laundry/internal/pkg/dberr"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ExistsForDate(ctx context.Context, date time.Time, excludeID uint) (bool, error)
	Create(ctx context.Context, c *CashClose) error
	Read(ctx context.Context, id uint) (CashClose, error)
	ReadByDate(ctx context.Context, date time.Time) (CashClose, error)
	List(ctx context.Context, f Filter) ([]CashClose, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	PaymentTotals(ctx context.Context, date time.Time) (MethodTotals, error)
	RegisterTotals(ctx context.Context, date time.Time) (MethodTotals, error)
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

func (r *repositoryImpl) ExistsForDate(ctx context.Context, date time.Time, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&CashClose{}).Where("close_date = ?", date)
	if excludeID != 0 {
		query = query.Where("close_id <> ?", excludeID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repositoryImpl) Create(ctx context.Context, c *CashClose) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if dberr.IsUniqueViolation(err) {
		return ErrAlreadyClosed
	}
	return err
}

func (r *repositoryImpl) Read(ctx context.Context, id uint) (CashClose, error) {
	return first(r.db.WithContext(ctx).Where("close_id = ?", id))
}

func (r *repositoryImpl) ReadByDate(ctx context.Context, date time.Time) (CashClose, error) {
	return first(r.db.WithContext(ctx).Where("close_date = ?", date))
}

func first(query *gorm.DB) (CashClose, error) {
	var c CashClose
	if err := query.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CashClose{}, ErrNotFound
		}
		return CashClose{}, err
	}
	return c, nil
}

func (r *repositoryImpl) List(ctx context.Context, f Filter) ([]CashClose, error) {
	query := r.db.WithContext(ctx)
	if f.From != nil {
		query = query.Where("close_date >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("close_date <= ?", *f.To)
	}
	var closes []CashClose
	err := query.Order("close_date DESC").Find(&closes).Error
	return closes, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	query := r.db.WithContext(ctx).Model(&CashClose{}).Where("close_id = ?", id).Updates(fields)
	if query.Error != nil {
		if dberr.IsUniqueViolation(query.Error) {
			return ErrAlreadyClosed
		}
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type methodRow struct {
	Method order.PaymentMethod
	Amount float64
	Count  int64
}

// PaymentTotals sums order payments received on date, deleted orders included since the money was taken.
func (r *repositoryImpl) PaymentTotals(ctx context.Context, date time.Time) (MethodTotals, error) {
	var rows []methodRow
	err := r.db.WithContext(ctx).
		Model(&order.Payment{}).
		Select("payment_method AS method, SUM(amount) AS amount, COUNT(*) AS count").
		Where("paid_at >= ? AND paid_at < ?", date, date.AddDate(0, 0, 1)).
		Group("payment_method").
		Scan(&rows).Error
	return collect(rows), err
}

func (r *repositoryImpl) RegisterTotals(ctx context.Context, date time.Time) (MethodTotals, error) {
	var rows []methodRow
	err := r.db.WithContext(ctx).
		Model(&register.Entry{}).
		Select("payment_method AS method, SUM(paid_amount) AS amount, COUNT(*) AS count").
		Where("entry_date = ? AND paid_amount > 0", date).
		Group("payment_method").
		Scan(&rows).Error
	return collect(rows), err
}

func collect(rows []methodRow) MethodTotals {
	var m MethodTotals
	for _, row := range rows {
		m.add(row.Method, row.Amount, row.Count)
	}
	return m
}
