package register

import (
	"time"

	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/pkg/trail"
)

const tableName = "register"

type Status string

const (
	StatusReceived  Status = "received"
	StatusReady     Status = "ready"
	StatusCollected Status = "collected"
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusReceived, StatusReady, StatusCollected:
		return true
	}
	return false
}

// Entry is a line of the paper-style ledger kept alongside orders.
type Entry struct {
	RegisterID      uint                `gorm:"column:register_id;primaryKey" json:"register_id"`
	CustomerName    string              `gorm:"column:customer_name;size:150;not null;index" json:"customer_name"`
	PhoneNumber     string              `gorm:"column:phone_number;size:20;index" json:"phone_number,omitempty"`
	ItemDescription string              `gorm:"column:item_description;type:text;not null" json:"item_description"`
	Quantity        int                 `gorm:"not null" json:"quantity"`
	Amount          float64             `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAmount      float64             `gorm:"column:paid_amount;type:decimal(12,2);not null" json:"paid_amount"`
	PaymentMethod   order.PaymentMethod `gorm:"column:payment_method;size:20" json:"payment_method,omitempty"`
	Status          Status              `gorm:"size:20;not null;index" json:"status"`
	EntryDate       time.Time           `gorm:"column:entry_date;type:date;not null;index" json:"entry_date"`
	trail.Trail
	trail.SoftDelete
}

func (Entry) TableName() string {
	return tableName
}

type Filter struct {
	Search string
	Status Status
	From   *time.Time
	To     *time.Time
	Page   int
	Size   int
}

type CreateInput struct {
	CustomerName    string
	PhoneNumber     string
	ItemDescription string
	Quantity        int
	Amount          float64
	PaidAmount      float64
	PaymentMethod   order.PaymentMethod
	Status          Status
	EntryDate       *time.Time
}

type UpdateInput struct {
	CustomerName    *string
	PhoneNumber     *string
	ItemDescription *string
	Quantity        *int
	Amount          *float64
	PaidAmount      *float64
	PaymentMethod   *order.PaymentMethod
	Status          *Status
	EntryDate       *time.Time
}
