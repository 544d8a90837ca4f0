package audit

import "errors"

var (
	ErrInvalidRetention = errors.New("retention days must be at least 1")
	ErrInvalidAction    = errors.New("invalid action type")
	ErrInvalidEntry     = errors.New("table name and action type are required")
)
