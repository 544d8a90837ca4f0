package cashclose

import (
	"time"

	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/pkg/trail"
)

const (
	tableName = "daily_cash_close"
	// Tolerance is the largest accepted gap between the method buckets and the declared total.
	Tolerance = 0.01
)

type CashClose struct {
	CloseID       uint      `gorm:"column:close_id;primaryKey" json:"close_id"`
	CloseDate     time.Time `gorm:"column:close_date;type:date;not null;uniqueIndex:ux_daily_cash_close_date_live,where:deleted_at IS NULL" json:"close_date"`
	Cash          float64   `gorm:"type:decimal(12,2);not null" json:"cash"`
	Card          float64   `gorm:"type:decimal(12,2);not null" json:"card"`
	Mobile        float64   `gorm:"type:decimal(12,2);not null" json:"mobile"`
	BankTransfer  float64   `gorm:"column:bank_transfer;type:decimal(12,2);not null" json:"bank_transfer"`
	TotalAmount   float64   `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	ExpectedTotal float64   `gorm:"column:expected_total;type:decimal(12,2);not null" json:"expected_total"`
	Difference    float64   `gorm:"type:decimal(12,2);not null" json:"difference"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	trail.Trail
	trail.SoftDelete
}

func (CashClose) TableName() string {
	return tableName
}

// Input is a close as submitted, before the date is parsed.
type Input struct {
	CloseDate    string
	Cash         float64
	Card         float64
	Mobile       float64
	BankTransfer float64
	TotalAmount  float64
	Notes        string
}

func (in Input) methodSum() float64 {
	return in.Cash + in.Card + in.Mobile + in.BankTransfer
}

type UpdateInput struct {
	CloseDate    *string
	Cash         *float64
	Card         *float64
	Mobile       *float64
	BankTransfer *float64
	TotalAmount  *float64
	Notes        *string
}

type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid   bool      `json:"valid"`
	Message string    `json:"message"`
	Errors  []Problem `json:"errors"`
	// Duplicate is set when the date is already closed.
	Duplicate bool `json:"-"`
}

// MethodTotals buckets money by payment method.
type MethodTotals struct {
	Cash         float64 `json:"cash"`
	Card         float64 `json:"card"`
	Mobile       float64 `json:"mobile"`
	BankTransfer float64 `json:"bank_transfer"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
}

func (m *MethodTotals) add(method order.PaymentMethod, amount float64, count int64) {
	switch method {
	case order.MethodCash:
		m.Cash = order.RoundCents(m.Cash + amount)
	case order.MethodCard:
		m.Card = order.RoundCents(m.Card + amount)
	case order.MethodMobile:
		m.Mobile = order.RoundCents(m.Mobile + amount)
	case order.MethodBankTransfer:
		m.BankTransfer = order.RoundCents(m.BankTransfer + amount)
	}
	m.Total = order.RoundCents(m.Total + amount)
	m.Count += count
}

func (m MethodTotals) plus(o MethodTotals) MethodTotals {
	return MethodTotals{
		Cash:         order.RoundCents(m.Cash + o.Cash),
		Card:         order.RoundCents(m.Card + o.Card),
		Mobile:       order.RoundCents(m.Mobile + o.Mobile),
		BankTransfer: order.RoundCents(m.BankTransfer + o.BankTransfer),
		Total:        order.RoundCents(m.Total + o.Total),
		Count:        m.Count + o.Count,
	}
}

// Summary is what the day's records say should be in the till.
type Summary struct {
	Date     string       `json:"date"`
	Orders   MethodTotals `json:"orders"`
	Register MethodTotals `json:"register"`
	Expected MethodTotals `json:"expected"`
	Closed   bool         `json:"closed"`
}

type Filter struct {
	From *time.Time
	To   *time.Time
}
