package user

import "errors"

var (
	ErrUsernameDuplicated = errors.New("username already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input data")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrNothingToUpdate    = errors.New("no fields to update")
)
