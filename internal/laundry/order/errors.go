package order

import "errors"

var (
	ErrNotFound         = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrInvalidItem      = errors.New("item quantity must be at least 1 and unit price cannot be negative")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrInvalidAmount    = errors.New("payment amount must be greater than zero")
	ErrOverpayment      = errors.New("payment exceeds the outstanding balance")
	ErrTotalBelowPaid   = errors.New("order total cannot be lower than the amount already paid")
	ErrOrderCancelled   = errors.New("order is cancelled")
	ErrNothingToUpdate  = errors.New("no fields to update")

	errOrderNumberTaken = errors.New("order number already taken")
)
