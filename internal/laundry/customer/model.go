package customer

import "garaadka-laundry/internal/pkg/trail"

const tableName = "customers"

type Customer struct {
	CustomerID   uint   `gorm:"column:customer_id;primaryKey" json:"customer_id"`
	CustomerName string `gorm:"column:customer_name;size:150;not null;index" json:"customer_name"`
	PhoneNumber  string `gorm:"column:phone_number;size:20;not null;uniqueIndex:ux_customers_phone_live,where:deleted_at IS NULL" json:"phone_number"`
	Email        string `gorm:"size:255" json:"email,omitempty"`
	Address      string `gorm:"size:255" json:"address,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	trail.Trail
	trail.SoftDelete
}

func (Customer) TableName() string {
	return tableName
}

type Filter struct {
	Search string
	Page   int
	Size   int
}

type CreateInput struct {
	CustomerName string
	PhoneNumber  string
	Email        string
	Address      string
	Notes        string
}

type UpdateInput struct {
	CustomerName *string
	PhoneNumber  *string
	Email        *string
	Address      *string
	Notes        *string
}
