package order

type OrderListResponseDto struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}

type CreateOrderResponseDto struct {
	Message     string  `json:"message"`
	OrderID     uint    `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	TotalAmount float64 `json:"total_amount"`
	Order       Order   `json:"order"`
}

type PaymentResponseDto struct {
	Message       string        `json:"message"`
	Payment       Payment       `json:"payment"`
	PaidAmount    float64       `json:"paid_amount"`
	Outstanding   float64       `json:"outstanding"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}
