package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrPositionNotAllowed = errors.New("only an admin can assign a position")
	ErrTokenNotFound      = errors.New("access token not found")
	ErrOTPCodeExist       = errors.New("an otp code was already sent, wait before requesting another")
	ErrOTPCodeWrong       = errors.New("otp code wrong or expired")
)
