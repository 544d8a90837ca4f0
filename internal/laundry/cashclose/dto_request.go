package cashclose

type CashCloseRequestDto struct {
	CloseDate    string  `json:"close_date" binding:"required,ymd"`
	Cash         float64 `json:"cash" binding:"gte=0"`
	Card         float64 `json:"card" binding:"gte=0"`
	Mobile       float64 `json:"mobile" binding:"gte=0"`
	BankTransfer float64 `json:"bank_transfer" binding:"gte=0"`
	TotalAmount  float64 `json:"total_amount" binding:"gte=0"`
	Notes        string  `json:"notes" binding:"max=2000"`
}

func (r CashCloseRequestDto) toInput() Input {
	return Input{
		CloseDate:    r.CloseDate,
		Cash:         r.Cash,
		Card:         r.Card,
		Mobile:       r.Mobile,
		BankTransfer: r.BankTransfer,
		TotalAmount:  r.TotalAmount,
		Notes:        r.Notes,
	}
}

type UpdateCashCloseRequestDto struct {
	CloseDate    *string  `json:"close_date" binding:"omitempty,ymd"`
	Cash         *float64 `json:"cash" binding:"omitempty,gte=0"`
	Card         *float64 `json:"card" binding:"omitempty,gte=0"`
	Mobile       *float64 `json:"mobile" binding:"omitempty,gte=0"`
	BankTransfer *float64 `json:"bank_transfer" binding:"omitempty,gte=0"`
	TotalAmount  *float64 `json:"total_amount" binding:"omitempty,gte=0"`
	Notes        *string  `json:"notes" binding:"omitempty,max=2000"`
}

func (r UpdateCashCloseRequestDto) toInput() UpdateInput {
	return UpdateInput{
		CloseDate:    r.CloseDate,
		Cash:         r.Cash,
		Card:         r.Card,
		Mobile:       r.Mobile,
		BankTransfer: r.BankTransfer,
		TotalAmount:  r.TotalAmount,
		Notes:        r.Notes,
	}
}

type ListCashCloseRequestDto struct {
	From string `form:"from" binding:"omitempty,ymd"`
	To   string `form:"to" binding:"omitempty,ymd"`
}

func (r ListCashCloseRequestDto) toFilter() Filter {
	var f Filter
	if t, err := ParseDate(r.From); err == nil {
		f.From = &t
	}
	if t, err := ParseDate(r.To); err == nil {
		f.To = &t
	}
	return f
}

type CloseIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type CloseDateUri struct {
	Date string `uri:"date" binding:"required,ymd"`
}
