package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/pkg/trail"
	"garaadka-laundry/internal/pkg/validation"
)

type Service interface {
	Create(ctx context.Context, actor audit.Actor, in CreateInput) (Entry, error)
	Read(ctx context.Context, id uint) (Entry, error)
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
	Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (Entry, error)
	// Delete soft deletes unless hard is set, in which case the row is removed for good.
	Delete(ctx context.Context, actor audit.Actor, id uint, hard bool) error
	Restore(ctx context.Context, actor audit.Actor, id uint) (Entry, error)
}

type serviceImpl struct {
	db         *gorm.DB
	Repository Repository
	recorder   audit.Recorder
	logger     *zap.Logger
}

func NewService(db *gorm.DB, repository Repository, recorder audit.Recorder, logger *zap.Logger) Service {
	return &serviceImpl{
		db:         db,
		Repository: repository,
		recorder:   recorder,
		logger:     logger,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor audit.Actor, in CreateInput) (Entry, error) {
	now := trail.Now()
	e := Entry{
		CustomerName:    strings.Join(strings.Fields(in.CustomerName), " "),
		ItemDescription: strings.TrimSpace(in.ItemDescription),
		Quantity:        in.Quantity,
		Amount:          order.RoundCents(in.Amount),
		PaidAmount:      order.RoundCents(in.PaidAmount),
		PaymentMethod:   in.PaymentMethod,
		Status:          in.Status,
		EntryDate:       today(now),
	}
	if e.Status == "" {
		e.Status = StatusReceived
	}
	if in.EntryDate != nil {
		e.EntryDate = today(*in.EntryDate)
	}
	if in.PhoneNumber != "" {
		if !validation.IsPhone(in.PhoneNumber) {
			return Entry{}, ErrInvalidPhone
		}
		e.PhoneNumber = validation.NormalizePhone(in.PhoneNumber)
	}
	if err := check(e); err != nil {
		return Entry{}, err
	}
	e.StampCreate(actor.EmpID, now)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repository.WithTx(tx).Create(ctx, &e); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(e.RegisterID),
			Action:    audit.ActionCreate,
			Status:    fmt.Sprintf("Register entry created for %s", e.CustomerName),
			NewValues: e,
		})
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *serviceImpl) Read(ctx context.Context, id uint) (Entry, error) {
	return s.Repository.Read(ctx, id)
}

func (s *serviceImpl) List(ctx context.Context, f Filter) ([]Entry, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = 20
	}
	return s.Repository.List(ctx, f)
}

func (s *serviceImpl) Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (Entry, error) {
	fields := map[string]any{}
	if in.CustomerName != nil {
		fields["customer_name"] = strings.Join(strings.Fields(*in.CustomerName), " ")
	}
	if in.PhoneNumber != nil {
		phone := ""
		if *in.PhoneNumber != "" {
			if !validation.IsPhone(*in.PhoneNumber) {
				return Entry{}, ErrInvalidPhone
			}
			phone = validation.NormalizePhone(*in.PhoneNumber)
		}
		fields["phone_number"] = phone
	}
	if in.ItemDescription != nil {
		fields["item_description"] = strings.TrimSpace(*in.ItemDescription)
	}
	if in.Quantity != nil {
		fields["quantity"] = *in.Quantity
	}
	if in.Amount != nil {
		fields["amount"] = order.RoundCents(*in.Amount)
	}
	if in.PaidAmount != nil {
		fields["paid_amount"] = order.RoundCents(*in.PaidAmount)
	}
	if in.PaymentMethod != nil {
		fields["payment_method"] = *in.PaymentMethod
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.EntryDate != nil {
		fields["entry_date"] = today(*in.EntryDate)
	}
	if len(fields) == 0 {
		return Entry{}, ErrNothingToUpdate
	}

	var updated Entry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.Read(ctx, id)
		if err != nil {
			return err
		}
		if err := check(merge(old, in, fields)); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, trail.ForUpdate(fields, actor.EmpID)); err != nil {
			return err
		}
		if updated, err = repo.Read(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionUpdate,
			Status:    fmt.Sprintf("Register entry updated for %s", updated.CustomerName),
			OldValues: old,
			NewValues: updated,
		})
	})
	if err != nil {
		return Entry{}, err
	}
	return updated, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor audit.Actor, id uint, hard bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)

		var (
			old    Entry
			err    error
			status string
		)
		if hard {
			old, err = repo.ReadAny(ctx, id)
			if err != nil {
				return err
			}
			err = repo.HardDelete(ctx, id)
			status = fmt.Sprintf("Register entry for %s permanently deleted", old.CustomerName)
		} else {
			old, err = repo.Read(ctx, id)
			if err != nil {
				return err
			}
			err = repo.SoftDelete(ctx, id, actor.EmpID)
			status = fmt.Sprintf("Register entry for %s deleted", old.CustomerName)
		}
		if err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionDelete,
			Status:    status,
			OldValues: old,
		})
	})
}

func (s *serviceImpl) Restore(ctx context.Context, actor audit.Actor, id uint) (Entry, error) {
	var restored Entry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.ReadAny(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Restore(ctx, id, actor.EmpID); err != nil {
			return err
		}
		if restored, err = repo.Read(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionRestore,
			Status:    fmt.Sprintf("Register entry for %s restored", restored.CustomerName),
			OldValues: old,
			NewValues: restored,
		})
	})
	if err != nil {
		return Entry{}, err
	}
	return restored, nil
}

func check(e Entry) error {
	switch {
	case e.CustomerName == "", e.ItemDescription == "", e.Quantity < 1:
		return ErrInvalidEntry
	case e.Amount < 0, e.PaidAmount < 0:
		return ErrNegativeAmount
	case e.PaidAmount > e.Amount:
		return ErrPaidExceeds
	case !IsValidStatus(e.Status):
		return ErrInvalidStatus
	case e.PaymentMethod != "" && !order.IsValidMethod(e.PaymentMethod):
		return ErrInvalidMethod
	}
	return nil
}

// merge applies the pending changes to a copy of old so the result can be checked as a whole.
func merge(old Entry, in UpdateInput, fields map[string]any) Entry {
	e := old
	if v, ok := fields["customer_name"].(string); ok {
		e.CustomerName = v
	}
	if v, ok := fields["item_description"].(string); ok {
		e.ItemDescription = v
	}
	if in.Quantity != nil {
		e.Quantity = *in.Quantity
	}
	if v, ok := fields["amount"].(float64); ok {
		e.Amount = v
	}
	if v, ok := fields["paid_amount"].(float64); ok {
		e.PaidAmount = v
	}
	if in.PaymentMethod != nil {
		e.PaymentMethod = *in.PaymentMethod
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	return e
}

func today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
