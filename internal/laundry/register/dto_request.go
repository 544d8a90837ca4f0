package register

import (
	"time"

	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/pkg/validation"
)

type CreateEntryRequestDto struct {
	CustomerName    string              `json:"customer_name" binding:"required,max=150"`
	PhoneNumber     string              `json:"phone_number" binding:"omitempty,phone"`
	ItemDescription string              `json:"item_description" binding:"required,max=2000"`
	Quantity        int                 `json:"quantity" binding:"min=1"`
	Amount          float64             `json:"amount" binding:"gte=0"`
	PaidAmount      float64             `json:"paid_amount" binding:"gte=0,ltefield=Amount"`
	PaymentMethod   order.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card mobile bank_transfer"`
	Status          Status              `json:"status" binding:"omitempty,oneof=received ready collected"`
	EntryDate       string              `json:"entry_date" binding:"omitempty,ymd"`
}

func (r CreateEntryRequestDto) toInput() CreateInput {
	return CreateInput{
		CustomerName:    r.CustomerName,
		PhoneNumber:     r.PhoneNumber,
		ItemDescription: r.ItemDescription,
		Quantity:        r.Quantity,
		Amount:          r.Amount,
		PaidAmount:      r.PaidAmount,
		PaymentMethod:   r.PaymentMethod,
		Status:          r.Status,
		EntryDate:       parseDate(r.EntryDate),
	}
}

type UpdateEntryRequestDto struct {
	CustomerName    *string              `json:"customer_name" binding:"omitempty,min=1,max=150"`
	PhoneNumber     *string              `json:"phone_number" binding:"omitempty"`
	ItemDescription *string              `json:"item_description" binding:"omitempty,min=1,max=2000"`
	Quantity        *int                 `json:"quantity" binding:"omitempty,min=1"`
	Amount          *float64             `json:"amount" binding:"omitempty,gte=0"`
	PaidAmount      *float64             `json:"paid_amount" binding:"omitempty,gte=0"`
	PaymentMethod   *order.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card mobile bank_transfer"`
	Status          *Status              `json:"status" binding:"omitempty,oneof=received ready collected"`
	EntryDate       *string              `json:"entry_date" binding:"omitempty,ymd"`
}

func (r UpdateEntryRequestDto) toInput() UpdateInput {
	in := UpdateInput{
		CustomerName:    r.CustomerName,
		PhoneNumber:     r.PhoneNumber,
		ItemDescription: r.ItemDescription,
		Quantity:        r.Quantity,
		Amount:          r.Amount,
		PaidAmount:      r.PaidAmount,
		PaymentMethod:   r.PaymentMethod,
		Status:          r.Status,
	}
	if r.EntryDate != nil {
		in.EntryDate = parseDate(*r.EntryDate)
	}
	return in
}

type ListEntryRequestDto struct {
	Search string `form:"search" binding:"max=100"`
	Status Status `form:"status" binding:"omitempty,oneof=received ready collected"`
	From   string `form:"from" binding:"omitempty,ymd"`
	To     string `form:"to" binding:"omitempty,ymd"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Size   int    `form:"size" binding:"omitempty,min=1,max=100"`
}

type EntryIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

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
