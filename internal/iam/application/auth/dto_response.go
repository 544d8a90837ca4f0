package auth

import (
	"time"

	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/iam/domain/user"
)

// Login is the outcome of a successful authentication.
type Login struct {
	User        model.User
	AccessToken model.AccessToken
}

type LoginResponse struct {
	Message string               `json:"message"`
	User    user.UserResponseDto `json:"user"`
	Token   string               `json:"token"`
	Expire  time.Time            `json:"expire"`
}
