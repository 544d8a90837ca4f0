package order

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"garaadka-laundry/internal/pkg/dbquery"
	"garaadka-laundry/internal/laundry/customer"
	"garaadka-laundry/internal/pkg/dberr"
	"garaadka-laundry/internal/pkg/trail"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MaxOrderNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, o *Order) error
	CreateItems(ctx context.Context, items []OrderItem) error
	Read(ctx context.Context, id uint) (Order, error)
	ReadForUpdate(ctx context.Context, id uint) (Order, error)
	ReadDetails(ctx context.Context, id uint) (Order, error)
	List(ctx context.Context, f Filter) ([]Order, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint, deletedBy string) error
	DeleteItems(ctx context.Context, orderID uint, deletedBy string) error
	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, orderID uint) ([]Payment, error)
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

// MaxOrderNumber returns the highest numeric suffix ever issued, deleted orders included.
func (r *repositoryImpl) MaxOrderNumber(ctx context.Context) (int, error) {
	var row struct {
		Highest sql.NullInt64
	}
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&Order{}).
		Where("order_number LIKE ?", orderPrefix+"%").
		Select("MAX(CAST(SUBSTR(order_number, ?) AS INTEGER)) AS highest", len(orderPrefix)+1).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return int(row.Highest.Int64), nil
}

func (r *repositoryImpl) Create(ctx context.Context, o *Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
	if dberr.IsUniqueViolation(err) {
		return errOrderNumberTaken
	}
	if dberr.IsForeignKeyViolation(err) {
		return ErrCustomerNotFound
	}
	return err
}

func (r *repositoryImpl) CreateItems(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repositoryImpl) Read(ctx context.Context, id uint) (Order, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *repositoryImpl) ReadForUpdate(ctx context.Context, id uint) (Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repositoryImpl) ReadDetails(ctx context.Context, id uint) (Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at").Order("payment_id") })
	o, err := r.first(query, id)
	if err != nil {
		return Order{}, err
	}
	orders := []Order{o}
	if err := r.attachCustomers(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

// attachCustomers fills Customer on each order with one query. Orders whose
// customer was soft deleted keep a nil Customer.
func (r *repositoryImpl) attachCustomers(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.CustomerID)
	}

	var owners []customer.Customer
	if err := r.db.WithContext(ctx).Where("customer_id IN ?", ids).Find(&owners).Error; err != nil {
		return err
	}
	byID := make(map[uint]*customer.Customer, len(owners))
	for i := range owners {
		byID[owners[i].CustomerID] = &owners[i]
	}
	for i := range orders {
		orders[i].Customer = byID[orders[i].CustomerID]
	}
	return nil
}

func (r *repositoryImpl) first(query *gorm.DB, id uint) (Order, error) {
	var o Order
	if err := query.First(&o, "order_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *repositoryImpl) List(ctx context.Context, f Filter) ([]Order, int64, error) {
	filters := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.PaymentStatus != "" {
			db = db.Where("payment_status = ?", f.PaymentStatus)
		}
		if f.CustomerID != 0 {
			db = db.Where("customer_id = ?", f.CustomerID)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			db = db.Where("LOWER(order_number) LIKE ? "+dbquery.Escape, dbquery.Contains(s))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Order{}).Scopes(filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []Order
	err := r.db.WithContext(ctx).
		Scopes(filters).
		Order("order_id DESC").
		Limit(f.Size).
		Offset((f.Page - 1) * f.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachCustomers(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	query := r.db.WithContext(ctx).Model(&Order{}).Where("order_id = ?", id).Updates(fields)
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uint, deletedBy string) error {
	query := r.db.WithContext(ctx).Model(&Order{}).Where("order_id = ?", id).Updates(trail.ForDelete(deletedBy))
	if query.Error != nil {
		return query.Error
	}
	if query.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) DeleteItems(ctx context.Context, orderID uint, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&OrderItem{}).
		Where("order_id = ?", orderID).
		Updates(trail.ForDelete(deletedBy)).Error
}

func (r *repositoryImpl) CreatePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repositoryImpl) ListPayments(ctx context.Context, orderID uint) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("paid_at").
		Order("payment_id").
		Find(&payments).Error
	return payments, err
}
