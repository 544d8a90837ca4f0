package accesslog

import (
	"time"
)

type AccessLog struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID string `gorm:"column:request_id;size:100;not null;index"`
	Username  string `gorm:"size:100;index"`

	Method      string `gorm:"size:10;not null"`
	Path        string `gorm:"type:text;not null"`
	Route       string `gorm:"type:text"`
	Host        string `gorm:"type:text;not null"`
	StatusCode  int    `gorm:"not null"`
	IP          string `gorm:"size:64;not null"`
	UserAgent   string `gorm:"type:text"`
	Referer     string `gorm:"type:text"`
	ContentType string `gorm:"type:text"`

	RequestTime time.Time `gorm:"not null;index"`
	LatencyMs   float64   `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (AccessLog) TableName() string {
	return "access_log"
}
