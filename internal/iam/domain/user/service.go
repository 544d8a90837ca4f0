package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/pkg/trail"
	"garaadka-laundry/internal/pkg/util"
)

type Service interface {
	Create(ctx context.Context, actor audit.Actor, user User, password string) (User, error)
	Read(ctx context.Context, user User) (User, error)
	List(ctx context.Context, page, pageSize int) ([]User, int64, error)
	Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (User, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	CountLive(ctx context.Context) (int64, error)
	RecordLogin(ctx context.Context, tx *gorm.DB, actor audit.Actor, u User) error
}

type serviceImpl struct {
	db         *gorm.DB
	Repository Repository
	recorder   audit.Recorder
	password   util.Password
	logger     *zap.Logger
}

func NewService(db *gorm.DB, repository Repository, recorder audit.Recorder, password util.Password, logger *zap.Logger) Service {
	return &serviceImpl{
		db:         db,
		Repository: repository,
		recorder:   recorder,
		password:   password,
		logger:     logger,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor audit.Actor, user User, password string) (User, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || password == "" {
		return User{}, ErrInvalidInput
	}
	if user.Position == "" {
		user.Position = PositionEmployee
	}
	if !model.IsValidPosition(user.Position) {
		return User{}, ErrInvalidPosition
	}

	hash, err := s.password.Hash(password)
	if err != nil {
		return User{}, err
	}
	user.ID = 0
	user.Password = hash
	user.Active = true
	user.Trail.StampCreate(actor.EmpID, trail.Now())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repository.WithTx(tx).Create(ctx, &user); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(user.ID),
			Action:    audit.ActionCreate,
			Status:    fmt.Sprintf("User account %s created", user.Username),
			NewValues: user,
		})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *serviceImpl) Read(ctx context.Context, user User) (User, error) {
	return s.Repository.Read(ctx, user)
}

func (s *serviceImpl) List(ctx context.Context, page, pageSize int) ([]User, int64, error) {
	return s.Repository.List(ctx, page, pageSize)
}

func (s *serviceImpl) Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (User, error) {
	if in.empty() {
		return User{}, ErrNothingToUpdate
	}
	if in.Position != nil && !model.IsValidPosition(*in.Position) {
		return User{}, ErrInvalidPosition
	}

	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		fields["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Position != nil {
		fields["position"] = *in.Position
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if in.Password != nil {
		hash, err := s.password.Hash(*in.Password)
		if err != nil {
			return User{}, err
		}
		fields["password_hash"] = hash
	}

	var updated User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.Read(ctx, User{ID: id})
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, id, trail.ForUpdate(fields, actor.EmpID)); err != nil {
			return err
		}
		if updated, err = repo.Read(ctx, User{ID: id}); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionUpdate,
			Status:    fmt.Sprintf("User account %s updated", old.Username),
			OldValues: old,
			NewValues: updated,
		})
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.Read(ctx, User{ID: id})
		if err != nil {
			return err
		}
		if old.Username == actor.EmpID {
			return ErrCannotDeleteSelf
		}
		if err := repo.Delete(ctx, id, actor.EmpID); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionDelete,
			Status:    fmt.Sprintf("User account %s deleted", old.Username),
			OldValues: old,
		})
	})
}

func (s *serviceImpl) CountLive(ctx context.Context) (int64, error) {
	return s.Repository.CountLive(ctx)
}

// RecordLogin stamps last_login_at and writes the LOGIN audit row inside tx.
func (s *serviceImpl) RecordLogin(ctx context.Context, tx *gorm.DB, actor audit.Actor, u User) error {
	now := trail.Now()
	err := s.Repository.WithTx(tx).Update(ctx, u.ID, map[string]any{"last_login_at": now})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.recorder.Record(ctx, tx, audit.Entry{
		Actor:     actor,
		TableName: tableName,
		RecordID:  audit.RecordID(u.ID),
		Action:    audit.ActionLogin,
		Status:    fmt.Sprintf("User %s logged in", u.Username),
	})
}
