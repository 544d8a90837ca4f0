package customer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/pkg/trail"
	"garaadka-laundry/internal/pkg/validation"
)

type Service interface {
	Create(ctx context.Context, actor audit.Actor, in CreateInput) (Customer, error)
	Read(ctx context.Context, id uint) (Customer, error)
	List(ctx context.Context, f Filter) ([]Customer, int64, error)
	Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (Customer, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
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

func (s *serviceImpl) Create(ctx context.Context, actor audit.Actor, in CreateInput) (Customer, error) {
	name, err := cleanName(in.CustomerName)
	if err != nil {
		return Customer{}, err
	}
	phone, err := cleanPhone(in.PhoneNumber)
	if err != nil {
		return Customer{}, err
	}

	c := Customer{
		CustomerName: name,
		PhoneNumber:  phone,
		Email:        strings.TrimSpace(in.Email),
		Address:      strings.TrimSpace(in.Address),
		Notes:        in.Notes,
	}
	c.StampCreate(actor.EmpID, trail.Now())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repository.WithTx(tx).Create(ctx, &c); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(c.CustomerID),
			Action:    audit.ActionCreate,
			Status:    fmt.Sprintf("Customer created: %s", c.CustomerName),
			NewValues: c,
		})
	})
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *serviceImpl) Read(ctx context.Context, id uint) (Customer, error) {
	return s.Repository.Read(ctx, id)
}

func (s *serviceImpl) List(ctx context.Context, f Filter) ([]Customer, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = 20
	}
	return s.Repository.List(ctx, f)
}

func (s *serviceImpl) Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (Customer, error) {
	fields := map[string]any{}
	if in.CustomerName != nil {
		name, err := cleanName(*in.CustomerName)
		if err != nil {
			return Customer{}, err
		}
		fields["customer_name"] = name
	}
	if in.PhoneNumber != nil {
		phone, err := cleanPhone(*in.PhoneNumber)
		if err != nil {
			return Customer{}, err
		}
		fields["phone_number"] = phone
	}
	if in.Email != nil {
		fields["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		fields["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if len(fields) == 0 {
		return Customer{}, ErrNothingToUpdate
	}

	var updated Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.Read(ctx, id)
		if err != nil {
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
			Status:    fmt.Sprintf("Customer updated: %s", updated.CustomerName),
			OldValues: old,
			NewValues: updated,
		})
	})
	if err != nil {
		return Customer{}, err
	}
	return updated, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.Read(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id, actor.EmpID); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionDelete,
			Status:    fmt.Sprintf("Customer deleted: %s", old.CustomerName),
			OldValues: old,
		})
	})
}

func cleanName(name string) (string, error) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return "", ErrInvalidName
	}
	return strings.Join(fields, " "), nil
}

func cleanPhone(phone string) (string, error) {
	if !validation.IsPhone(phone) {
		return "", ErrInvalidPhone
	}
	return validation.NormalizePhone(phone), nil
}
