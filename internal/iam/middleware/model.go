package middleware

import (
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/infra/jwt"
)

// Login is the authenticated identity attached to a request.
type Login struct {
	User        model.User
	AccessToken model.AccessToken
	Claims      *jwt.AccessTokenClaims
}
