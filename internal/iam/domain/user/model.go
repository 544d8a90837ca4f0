package user

import (
	"garaadka-laundry/internal/iam/domain/model"
)

type User = model.User
type Position = model.Position

const (
	PositionAdmin    = model.PositionAdmin
	PositionManager  = model.PositionManager
	PositionEmployee = model.PositionEmployee
)

const tableName = "users"

// UpdateInput carries only the fields a caller wants changed.
type UpdateInput struct {
	FullName *string
	Email    *string
	Position *Position
	Active   *bool
	Password *string
}

func (in UpdateInput) empty() bool {
	return in.FullName == nil && in.Email == nil && in.Position == nil && in.Active == nil && in.Password == nil
}
