package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/laundry/customer"
	"garaadka-laundry/internal/pkg/trail"
)

const (
	orderPrefix       = "ORD-"
	maxNumberAttempts = 5
)

func FormatOrderNumber(n int) string {
	return fmt.Sprintf("%s%03d", orderPrefix, n)
}

type Service interface {
	Create(ctx context.Context, actor audit.Actor, in CreateInput) (Order, error)
	Read(ctx context.Context, id uint) (Order, error)
	List(ctx context.Context, f Filter) ([]Order, int64, error)
	ListByCustomer(ctx context.Context, customerID uint, page, size int) ([]Order, int64, error)
	Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (Order, error)
	UpdateStatus(ctx context.Context, actor audit.Actor, id uint, status Status) (Order, error)
	AddPayment(ctx context.Context, actor audit.Actor, id uint, in PaymentInput) (Payment, Order, error)
	ListPayments(ctx context.Context, id uint) ([]Payment, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type serviceImpl struct {
	db         *gorm.DB
	Repository Repository
	customers  customer.Repository
	recorder   audit.Recorder
	logger     *zap.Logger
}

func NewService(db *gorm.DB, repository Repository, customers customer.Repository, recorder audit.Recorder, logger *zap.Logger) Service {
	return &serviceImpl{
		db:         db,
		Repository: repository,
		customers:  customers,
		recorder:   recorder,
		logger:     logger,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor audit.Actor, in CreateInput) (Order, error) {
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !IsValidStatus(status) {
		return Order{}, ErrInvalidStatus
	}
	items, total, err := buildItems(in.Items)
	if err != nil {
		return Order{}, err
	}

	var created Order
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			created, txErr = s.create(ctx, tx, actor, in, status, items, total)
			return txErr
		})
		if !errors.Is(err, errOrderNumberTaken) || attempt == maxNumberAttempts {
			break
		}
		s.logger.Warn("order number collision, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

func (s *serviceImpl) create(ctx context.Context, tx *gorm.DB, actor audit.Actor, in CreateInput, status Status, items []OrderItem, total float64) (Order, error) {
	owner, err := s.customers.WithTx(tx).Read(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return Order{}, ErrCustomerNotFound
		}
		return Order{}, err
	}

	repo := s.Repository.WithTx(tx)
	highest, err := repo.MaxOrderNumber(ctx)
	if err != nil {
		return Order{}, err
	}

	now := trail.Now()
	o := Order{
		OrderNumber:   FormatOrderNumber(highest + 1),
		CustomerID:    in.CustomerID,
		Status:        status,
		PaymentStatus: PaymentUnpaid,
		TotalAmount:   total,
		DueDate:       in.DueDate,
		Notes:         strings.TrimSpace(in.Notes),
	}
	o.StampCreate(actor.EmpID, now)
	if err := repo.Create(ctx, &o); err != nil {
		return Order{}, err
	}

	rows := attachItems(items, o.OrderID, actor.EmpID, now)
	if err := repo.CreateItems(ctx, rows); err != nil {
		return Order{}, err
	}
	o.Items = rows

	err = s.recorder.Record(ctx, tx, audit.Entry{
		Actor:     actor,
		TableName: ordersTable,
		RecordID:  audit.RecordID(o.OrderID),
		Action:    audit.ActionCreate,
		Status:    fmt.Sprintf("Order %s created for %s with %d item(s)", o.OrderNumber, owner.CustomerName, len(rows)),
		NewValues: o,
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *serviceImpl) Read(ctx context.Context, id uint) (Order, error) {
	return s.Repository.ReadDetails(ctx, id)
}

func (s *serviceImpl) List(ctx context.Context, f Filter) ([]Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = 20
	}
	return s.Repository.List(ctx, f)
}

func (s *serviceImpl) ListByCustomer(ctx context.Context, customerID uint, page, size int) ([]Order, int64, error) {
	if _, err := s.customers.Read(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, 0, ErrCustomerNotFound
		}
		return nil, 0, err
	}
	return s.List(ctx, Filter{CustomerID: customerID, Page: page, Size: size})
}

func (s *serviceImpl) Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (Order, error) {
	fields := map[string]any{}
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return Order{}, ErrInvalidStatus
		}
		fields["status"] = *in.Status
	}
	if in.DueDate != nil {
		fields["due_date"] = *in.DueDate
	}
	if in.Notes != nil {
		fields["notes"] = strings.TrimSpace(*in.Notes)
	}

	var (
		items []OrderItem
		total float64
	)
	if in.Items != nil {
		var err error
		if items, total, err = buildItems(in.Items); err != nil {
			return Order{}, err
		}
		fields["total_amount"] = total
	}
	if len(fields) == 0 {
		return Order{}, ErrNothingToUpdate
	}

	var updated Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		if _, err := repo.ReadForUpdate(ctx, id); err != nil {
			return err
		}
		old, err := repo.ReadDetails(ctx, id)
		if err != nil {
			return err
		}

		if in.Items != nil {
			if RoundCents(total-old.PaidAmount) < 0 {
				return ErrTotalBelowPaid
			}
			fields["payment_status"] = paymentStatusFor(total, old.PaidAmount)
			if err := repo.DeleteItems(ctx, id, actor.EmpID); err != nil {
				return err
			}
			if err := repo.CreateItems(ctx, attachItems(items, id, actor.EmpID, trail.Now())); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, id, trail.ForUpdate(fields, actor.EmpID)); err != nil {
			return err
		}
		if updated, err = repo.ReadDetails(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: ordersTable,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionUpdate,
			Status:    fmt.Sprintf("Order %s updated", updated.OrderNumber),
			OldValues: snapshot(old),
			NewValues: snapshot(updated),
		})
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, actor audit.Actor, id uint, status Status) (Order, error) {
	if !IsValidStatus(status) {
		return Order{}, ErrInvalidStatus
	}

	var updated Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.ReadForUpdate(ctx, id)
		if err != nil {
			return err
		}
		fields := map[string]any{"status": status}
		if err := repo.Update(ctx, id, trail.ForUpdate(fields, actor.EmpID)); err != nil {
			return err
		}
		if updated, err = repo.Read(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: ordersTable,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionUpdate,
			Status:    fmt.Sprintf("Order %s status changed from %s to %s", old.OrderNumber, old.Status, status),
			OldValues: map[string]any{"status": old.Status},
			NewValues: map[string]any{"status": status},
		})
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

func (s *serviceImpl) AddPayment(ctx context.Context, actor audit.Actor, id uint, in PaymentInput) (Payment, Order, error) {
	amount := RoundCents(in.Amount)
	if amount <= 0 {
		return Payment{}, Order{}, ErrInvalidAmount
	}
	if !IsValidMethod(in.PaymentMethod) {
		return Payment{}, Order{}, ErrInvalidMethod
	}
	now := trail.Now()
	paidAt := now
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}

	var (
		p       Payment
		updated Order
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		o, err := repo.ReadForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return ErrOrderCancelled
		}
		if RoundCents(amount-o.Outstanding()) > 0 {
			return ErrOverpayment
		}

		p = Payment{
			OrderID:       id,
			Amount:        amount,
			PaymentMethod: in.PaymentMethod,
			PaidAt:        paidAt,
			Reference:     strings.TrimSpace(in.Reference),
		}
		p.StampCreate(actor.EmpID, now)
		if err := repo.CreatePayment(ctx, &p); err != nil {
			return err
		}

		paid := RoundCents(o.PaidAmount + amount)
		fields := map[string]any{
			"paid_amount":    paid,
			"payment_status": paymentStatusFor(o.TotalAmount, paid),
		}
		if err := repo.Update(ctx, id, trail.ForUpdate(fields, actor.EmpID)); err != nil {
			return err
		}
		if updated, err = repo.Read(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: paymentsTable,
			RecordID:  audit.RecordID(p.PaymentID),
			Action:    audit.ActionCreate,
			Status:    fmt.Sprintf("Payment of %.2f (%s) recorded for order %s", amount, p.PaymentMethod, o.OrderNumber),
			NewValues: p,
		})
	})
	if err != nil {
		return Payment{}, Order{}, err
	}
	return p, updated, nil
}

func (s *serviceImpl) ListPayments(ctx context.Context, id uint) ([]Payment, error) {
	if _, err := s.Repository.Read(ctx, id); err != nil {
		return nil, err
	}
	return s.Repository.ListPayments(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.ReadDetails(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, id, actor.EmpID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id, actor.EmpID); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: ordersTable,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionDelete,
			Status:    fmt.Sprintf("Order %s deleted", old.OrderNumber),
			OldValues: snapshot(old),
		})
	})
}

// buildItems validates inputs and prices every line in cents. The total is the sum of the rounded subtotals.
func buildItems(inputs []ItemInput) ([]OrderItem, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, ErrNoItems
	}
	items := make([]OrderItem, 0, len(inputs))
	var total float64
	for _, in := range inputs {
		name := strings.TrimSpace(in.ItemName)
		if name == "" || in.Quantity < 1 || in.UnitPrice < 0 {
			return nil, 0, ErrInvalidItem
		}
		service := in.ServiceType
		if service == "" {
			service = ServiceWash
		}
		if !validServiceTypes[service] {
			return nil, 0, ErrInvalidItem
		}
		subtotal := RoundCents(float64(in.Quantity) * in.UnitPrice)
		total += subtotal
		items = append(items, OrderItem{
			ItemName:    name,
			ServiceType: service,
			Quantity:    in.Quantity,
			UnitPrice:   RoundCents(in.UnitPrice),
			Subtotal:    subtotal,
			Notes:       strings.TrimSpace(in.Notes),
		})
	}
	return items, RoundCents(total), nil
}

func attachItems(items []OrderItem, orderID uint, user string, now time.Time) []OrderItem {
	rows := make([]OrderItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].OrderID = orderID
		rows[i].StampCreate(user, now)
	}
	return rows
}

func snapshot(o Order) Order {
	o.Customer = nil
	return o
}
