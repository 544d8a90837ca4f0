package customer

type CustomerListResponseDto struct {
	Customers []Customer `json:"customers"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	Size      int        `json:"size"`
}

type CreateCustomerResponseDto struct {
	Message    string   `json:"message"`
	CustomerID uint     `json:"customer_id"`
	Customer   Customer `json:"customer"`
}
