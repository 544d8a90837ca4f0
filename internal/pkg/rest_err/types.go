package rest_err

const (
	ErrBadRequest          = "bad_request"
	ErrUnauthorized        = "unauthorized"
	ErrInternalServerError = "internal_server_error"
	ErrNotFound            = "not_found"
	ErrForbidden           = "forbidden"
	ErrConflict            = "conflict"
	ErrTooManyRequests     = "too_many_requests"
	ErrServiceUnavailable  = "service_unavailable"
)

// InternalMessage is the only text a 500 response ever carries.
const InternalMessage = "Internal server error"
