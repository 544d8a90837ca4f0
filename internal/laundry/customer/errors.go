package customer

import "errors"

var (
	ErrNotFound        = errors.New("customer not found")
	ErrPhoneDuplicated = errors.New("a customer with this phone number already exists")
	ErrNothingToUpdate = errors.New("no fields to update")
	ErrInvalidName     = errors.New("customer name must contain at least two words")
	ErrInvalidPhone    = errors.New("invalid phone number")
)
