package order

import (
	"time"

	"garaadka-laundry/internal/pkg/validation"
)

type ItemRequestDto struct {
	ItemName    string      `json:"item_name" binding:"required,max=150"`
	ServiceType ServiceType `json:"service_type" binding:"omitempty,oneof=wash dry_clean iron wash_iron other"`
	Quantity    int         `json:"quantity" binding:"min=1"`
	UnitPrice   float64     `json:"unit_price" binding:"gte=0"`
	Notes       string      `json:"notes" binding:"max=500"`
}

type CreateOrderRequestDto struct {
	CustomerID uint             `json:"customer_id" binding:"required,min=1"`
	Items      []ItemRequestDto `json:"items" binding:"required,min=1,dive"`
	Status     Status           `json:"status" binding:"omitempty,oneof=pending in_progress ready delivered cancelled"`
	DueDate    string           `json:"due_date" binding:"omitempty,ymd"`
	Notes      string           `json:"notes" binding:"max=2000"`
}

func (r CreateOrderRequestDto) toInput() CreateInput {
	return CreateInput{
		CustomerID: r.CustomerID,
		Items:      toItemInputs(r.Items),
		Status:     r.Status,
		DueDate:    parseDate(r.DueDate),
		Notes:      r.Notes,
	}
}

type UpdateOrderRequestDto struct {
	Status  *Status          `json:"status" binding:"omitempty,oneof=pending in_progress ready delivered cancelled"`
	DueDate *string          `json:"due_date" binding:"omitempty,ymd"`
	Notes   *string          `json:"notes" binding:"omitempty,max=2000"`
	Items   []ItemRequestDto `json:"items" binding:"omitempty,min=1,dive"`
}

func (r UpdateOrderRequestDto) toInput() UpdateInput {
	in := UpdateInput{
		Status: r.Status,
		Notes:  r.Notes,
	}
	if r.DueDate != nil {
		in.DueDate = parseDate(*r.DueDate)
	}
	if r.Items != nil {
		in.Items = toItemInputs(r.Items)
	}
	return in
}

type StatusRequestDto struct {
	Status Status `json:"status" binding:"required,oneof=pending in_progress ready delivered cancelled"`
}

type PaymentRequestDto struct {
	Amount        float64       `json:"amount" binding:"required,gt=0"`
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required,oneof=cash card mobile bank_transfer"`
	Reference     string        `json:"reference" binding:"max=100"`
	PaidAt        *time.Time    `json:"paid_at"`
}

func (r PaymentRequestDto) toInput() PaymentInput {
	return PaymentInput{
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Reference:     r.Reference,
		PaidAt:        r.PaidAt,
	}
}

type ListOrderRequestDto struct {
	Status        Status        `form:"status" binding:"omitempty,oneof=pending in_progress ready delivered cancelled"`
	PaymentStatus PaymentStatus `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	CustomerID    uint          `form:"customer_id" binding:"omitempty,min=1"`
	Search        string        `form:"search" binding:"max=50"`
	Page          int           `form:"page" binding:"omitempty,min=1"`
	Size          int           `form:"size" binding:"omitempty,min=1,max=100"`
}

type OrderIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

func toItemInputs(items []ItemRequestDto) []ItemInput {
	out := make([]ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, ItemInput{
			ItemName:    it.ItemName,
			ServiceType: it.ServiceType,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Notes:       it.Notes,
		})
	}
	return out
}

// parseDate expects input already checked by the ymd binding.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(validation.DateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
