package register

import "errors"

var (
	ErrNotFound        = errors.New("register entry not found")
	ErrNotDeleted      = errors.New("register entry is not deleted")
	ErrInvalidStatus   = errors.New("invalid register status")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidEntry    = errors.New("customer name and item description are required, quantity must be at least 1")
	ErrPaidExceeds     = errors.New("paid amount cannot exceed amount")
	ErrNegativeAmount  = errors.New("amounts cannot be negative")
	ErrNothingToUpdate = errors.New("no fields to update")
)
