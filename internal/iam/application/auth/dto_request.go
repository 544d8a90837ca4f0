package auth

import "garaadka-laundry/internal/iam/domain/model"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string         `json:"username" binding:"required,min=3,max=50"`
	FullName string         `json:"full_name" binding:"required,min=2,max=150"`
	Email    string         `json:"email" binding:"omitempty,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Position model.Position `json:"position" binding:"omitempty,oneof=admin manager employee"`
}

type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OTPResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTPCode  string `json:"otp" binding:"required,len=6,numeric"`
	Password string `json:"password" binding:"required,min=8"`
}
