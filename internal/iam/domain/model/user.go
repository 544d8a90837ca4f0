package model

import (
	"time"

	"garaadka-laundry/internal/pkg/trail"
)

type Position string

const (
	PositionAdmin    Position = "admin"
	PositionManager  Position = "manager"
	PositionEmployee Position = "employee"
)

var validPositions = map[Position]bool{
	PositionAdmin:    true,
	PositionManager:  true,
	PositionEmployee: true,
}

func IsValidPosition(p Position) bool {
	return validPositions[p]
}

// User is an employee account.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"size:50;not null;uniqueIndex:ux_users_username_live,where:deleted_at IS NULL" json:"username"`
	FullName    string     `gorm:"column:full_name;size:150;not null" json:"full_name"`
	Email       string     `gorm:"size:255;index" json:"email"`
	Position    Position   `gorm:"size:20;not null" json:"position"`
	Password    string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	Active      bool       `gorm:"not null" json:"active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	trail.Trail
	trail.SoftDelete
}

func (User) TableName() string {
	return "users"
}

// AccessToken is the server-side record of an issued JWT. Revoking sets
// Expiry to the revocation instant.
type AccessToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Token     string    `gorm:"size:512;not null;uniqueIndex"`
	SessionID string    `gorm:"column:session_id;size:64;not null"`
	Expiry    time.Time `gorm:"column:expire_date;not null"`
	CreatedAt time.Time `gorm:"not null"`
	User      User      `gorm:"foreignKey:UserID"`
}

func (AccessToken) TableName() string {
	return "users_access_tokens"
}
