package order

import (
	"math"
	"time"

	"garaadka-laundry/internal/laundry/customer"
	"garaadka-laundry/internal/pkg/trail"
)

const (
	ordersTable   = "orders"
	paymentsTable = "payments"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusReady      Status = "ready"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusReady:      true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func IsValidStatus(s Status) bool {
	return validStatuses[s]
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type ServiceType string

const (
	ServiceWash     ServiceType = "wash"
	ServiceDryClean ServiceType = "dry_clean"
	ServiceIron     ServiceType = "iron"
	ServiceWashIron ServiceType = "wash_iron"
	ServiceOther    ServiceType = "other"
)

var validServiceTypes = map[ServiceType]bool{
	ServiceWash:     true,
	ServiceDryClean: true,
	ServiceIron:     true,
	ServiceWashIron: true,
	ServiceOther:    true,
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodMobile       PaymentMethod = "mobile"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

var validMethods = map[PaymentMethod]bool{
	MethodCash:         true,
	MethodCard:         true,
	MethodMobile:       true,
	MethodBankTransfer: true,
}

func IsValidMethod(m PaymentMethod) bool {
	return validMethods[m]
}

type Order struct {
	OrderID       uint               `gorm:"column:order_id;primaryKey" json:"order_id"`
	OrderNumber   string             `gorm:"column:order_number;size:20;not null;uniqueIndex" json:"order_number"`
	CustomerID    uint               `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Customer      *customer.Customer `gorm:"-" json:"customer,omitempty"`
	Status        Status             `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus PaymentStatus      `gorm:"column:payment_status;size:20;not null;index" json:"payment_status"`
	TotalAmount   float64            `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount    float64            `gorm:"column:paid_amount;type:decimal(12,2);not null" json:"paid_amount"`
	DueDate       *time.Time         `gorm:"column:due_date" json:"due_date,omitempty"`
	Notes         string             `gorm:"type:text" json:"notes,omitempty"`
	Items         []OrderItem        `gorm:"foreignKey:OrderID;references:OrderID" json:"items,omitempty"`
	Payments      []Payment          `gorm:"foreignKey:OrderID;references:OrderID" json:"payments,omitempty"`
	trail.Trail
	trail.SoftDelete
}

func (Order) TableName() string {
	return ordersTable
}

// Outstanding is what remains to be paid.
func (o Order) Outstanding() float64 {
	return RoundCents(o.TotalAmount - o.PaidAmount)
}

type OrderItem struct {
	ItemID      uint        `gorm:"column:item_id;primaryKey" json:"item_id"`
	OrderID     uint        `gorm:"column:order_id;not null;index" json:"order_id"`
	ItemName    string      `gorm:"column:item_name;size:150;not null" json:"item_name"`
	ServiceType ServiceType `gorm:"column:service_type;size:20;not null" json:"service_type"`
	Quantity    int         `gorm:"not null" json:"quantity"`
	UnitPrice   float64     `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    float64     `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Notes       string      `gorm:"type:text" json:"notes,omitempty"`
	trail.Trail
	trail.SoftDelete
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Payment struct {
	PaymentID     uint          `gorm:"column:payment_id;primaryKey" json:"payment_id"`
	OrderID       uint          `gorm:"column:order_id;not null;index" json:"order_id"`
	Amount        float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod PaymentMethod `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	PaidAt        time.Time     `gorm:"column:paid_at;not null;index" json:"paid_at"`
	Reference     string        `gorm:"size:100" json:"reference,omitempty"`
	trail.Trail
}

func (Payment) TableName() string {
	return paymentsTable
}

type Filter struct {
	Status        Status
	PaymentStatus PaymentStatus
	CustomerID    uint
	Search        string
	Page          int
	Size          int
}

type ItemInput struct {
	ItemName    string
	ServiceType ServiceType
	Quantity    int
	UnitPrice   float64
	Notes       string
}

type CreateInput struct {
	CustomerID uint
	Items      []ItemInput
	Status     Status
	DueDate    *time.Time
	Notes      string
}

type UpdateInput struct {
	Status  *Status
	DueDate *time.Time
	Notes   *string
	// Items, when non-nil, replaces every item of the order.
	Items []ItemInput
}

type PaymentInput struct {
	Amount        float64
	PaymentMethod PaymentMethod
	Reference     string
	PaidAt        *time.Time
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func paymentStatusFor(total, paid float64) PaymentStatus {
	switch {
	case paid <= 0:
		return PaymentUnpaid
	case RoundCents(total-paid) <= 0:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
