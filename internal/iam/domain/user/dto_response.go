package user

import (
	"time"
)

type UserResponseDto struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email,omitempty"`
	Position    Position   `json:"position"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   string     `json:"created_by"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UpdatedBy   string     `json:"updated_by"`
}

type UserListResponseDto struct {
	Users []UserResponseDto `json:"users"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

func ToResponse(u User) UserResponseDto {
	return UserResponseDto{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Position:    u.Position,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		CreatedBy:   u.CreatedBy,
		UpdatedAt:   u.UpdatedAt,
		UpdatedBy:   u.UpdatedBy,
	}
}
