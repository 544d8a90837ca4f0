package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/iam/application/auth/otpstore"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/iam/domain/user"
	"garaadka-laundry/internal/infra/jwt"
	"garaadka-laundry/internal/pkg/mailer"
	"garaadka-laundry/internal/pkg/trail"
	"garaadka-laundry/internal/pkg/util"
)

const otpLength = 6

const otpTemplate = `<h1>Your password reset code is: {{.Code}}</h1><p>It expires in a few minutes.</p>`

type Service interface {
	Login(ctx context.Context, actor audit.Actor, username, pwd string) (Login, error)
	Logout(ctx context.Context, actor audit.Actor, u model.User, token string) error
	Register(ctx context.Context, actor audit.Actor, req RegisterRequest, caller *model.User) (model.User, error)
	CreateOTPCode(ctx context.Context, email string) error
	ChangeUserPwd(ctx context.Context, actor audit.Actor, otpCode, email, pwd string) error
}

type implService struct {
	db         *gorm.DB
	Repository Repository
	users      user.Service
	tokens     *jwt.TokenGenerator
	recorder   audit.Recorder
	password   util.Password
	otp        *otpstore.Store
	mail       mailer.Service
	logger     *zap.Logger
}

type Deps struct {
	DB         *gorm.DB
	Repository Repository
	Users      user.Service
	Tokens     *jwt.TokenGenerator
	Recorder   audit.Recorder
	Password   util.Password
	OTP        *otpstore.Store
	// Mail may be nil; OTP requests then fail with mailer.ErrMailerNotInitialized.
	Mail   mailer.Service
	Logger *zap.Logger
}

func NewService(d Deps) Service {
	return &implService{
		db:         d.DB,
		Repository: d.Repository,
		users:      d.Users,
		tokens:     d.Tokens,
		recorder:   d.Recorder,
		password:   d.Password,
		otp:        d.OTP,
		mail:       d.Mail,
		logger:     d.Logger,
	}
}

// Login verifies credentials, revokes the user's previous tokens and issues a
// new one. The token row and the LOGIN audit row commit together.
func (s *implService) Login(ctx context.Context, actor audit.Actor, username, pwd string) (Login, error) {
	rUser, err := s.users.Read(ctx, user.User{Username: username})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrInvalidInput) {
			return Login{}, ErrInvalidCredentials
		}
		return Login{}, err
	}
	if err := s.password.Compare(rUser.Password, pwd); err != nil {
		return Login{}, ErrInvalidCredentials
	}
	if !rUser.Active {
		return Login{}, ErrAccountDisabled
	}

	sessionID := uuid.NewString()
	token, expTime, err := s.tokens.GenerateAccessToken(jwt.Subject{
		UserID:    rUser.ID,
		Username:  rUser.Username,
		Position:  string(rUser.Position),
		SessionID: sessionID,
	})
	if err != nil {
		return Login{}, err
	}

	now := trail.Now()
	accessToken := model.AccessToken{
		UserID:    rUser.ID,
		Token:     token,
		SessionID: sessionID,
		Expiry:    expTime,
		CreatedAt: now,
	}
	actor.EmpID = rUser.Username
	actor.SessionID = sessionID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		if err := repo.RevokeAllUserTokens(ctx, rUser.ID, now); err != nil {
			return err
		}
		if err := repo.CreateAccessToken(ctx, &accessToken); err != nil {
			return err
		}
		return s.users.RecordLogin(ctx, tx, actor, rUser)
	})
	if err != nil {
		return Login{}, err
	}

	rUser.LastLoginAt = &now
	return Login{User: rUser, AccessToken: accessToken}, nil
}

func (s *implService) Logout(ctx context.Context, actor audit.Actor, u model.User, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repository.WithTx(tx).RevokeAccessToken(ctx, token, trail.Now()); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: "users",
			RecordID:  audit.RecordID(u.ID),
			Action:    audit.ActionLogout,
			Status:    fmt.Sprintf("User %s logged out", u.Username),
		})
	})
}

// Register creates an account. The very first account becomes admin; after
// that only an authenticated admin may choose a position.
func (s *implService) Register(ctx context.Context, actor audit.Actor, req RegisterRequest, caller *model.User) (model.User, error) {
	count, err := s.users.CountLive(ctx)
	if err != nil {
		return model.User{}, err
	}

	position := model.PositionEmployee
	switch {
	case count == 0:
		position = model.PositionAdmin
	case req.Position != "":
		if caller == nil || caller.Position != model.PositionAdmin {
			return model.User{}, ErrPositionNotAllowed
		}
		position = req.Position
	}

	if caller == nil {
		actor.EmpID = req.Username
	}

	return s.users.Create(ctx, actor, model.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Position: position,
	}, req.Password)
}

func (s *implService) CreateOTPCode(ctx context.Context, email string) error {
	if _, err := s.users.Read(ctx, user.User{Email: email}); err != nil {
		return err
	}
	if s.mail == nil {
		return mailer.ErrMailerNotInitialized
	}
	if _, found := s.otp.Get(email); found {
		return ErrOTPCodeExist
	}

	code, err := otpstore.Generate(otpLength)
	if err != nil {
		return err
	}
	s.otp.Save(email, code)

	if err := s.mail.SendTemplate(email, "Password reset code", otpTemplate, map[string]string{"Code": code}); err != nil {
		s.otp.Delete(email)
		return err
	}
	return nil
}

func (s *implService) ChangeUserPwd(ctx context.Context, actor audit.Actor, otpCode, email, pwd string) error {
	code, found := s.otp.Get(email)
	if !found || code != otpCode {
		return ErrOTPCodeWrong
	}

	target, err := s.users.Read(ctx, user.User{Email: email})
	if err != nil {
		return err
	}
	s.otp.Delete(email)

	actor.EmpID = target.Username
	if _, err := s.users.Update(ctx, actor, target.ID, user.UpdateInput{Password: &pwd}); err != nil {
		return err
	}

	if err := s.Repository.RevokeAllUserTokens(ctx, target.ID, trail.Now()); err != nil {
		s.logger.Warn("revoke tokens after password reset", zap.Uint("user_id", target.ID), zap.Error(err))
	}
	return nil
}
