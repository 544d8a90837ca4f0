package cashclose

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("cash close not found")
	ErrAlreadyClosed   = errors.New("cash has already been closed for this date")
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrNothingToUpdate = errors.New("no fields to update")
)

// InvalidError carries a failed validation back to the caller.
type InvalidError struct {
	Result ValidationResult
}

func (e *InvalidError) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, p := range e.Result.Errors {
		msgs = append(msgs, p.Message)
	}
	return "invalid cash close: " + strings.Join(msgs, "; ")
}
