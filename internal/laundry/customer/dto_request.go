package customer

type CreateCustomerRequestDto struct {
	CustomerName string `json:"customer_name" binding:"required,two_words,max=150"`
	PhoneNumber  string `json:"phone_number" binding:"required,phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Address      string `json:"address" binding:"max=255"`
	Notes        string `json:"notes" binding:"max=2000"`
}

func (r CreateCustomerRequestDto) toInput() CreateInput {
	return CreateInput{
		CustomerName: r.CustomerName,
		PhoneNumber:  r.PhoneNumber,
		Email:        r.Email,
		Address:      r.Address,
		Notes:        r.Notes,
	}
}

type UpdateCustomerRequestDto struct {
	CustomerName *string `json:"customer_name" binding:"omitempty,two_words,max=150"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,phone"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Address      *string `json:"address" binding:"omitempty,max=255"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}

func (r UpdateCustomerRequestDto) toInput() UpdateInput {
	return UpdateInput{
		CustomerName: r.CustomerName,
		PhoneNumber:  r.PhoneNumber,
		Email:        r.Email,
		Address:      r.Address,
		Notes:        r.Notes,
	}
}

type ListCustomerRequestDto struct {
	Search string `form:"search" binding:"max=100"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Size   int    `form:"size" binding:"omitempty,min=1,max=100"`
}

type CustomerIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}
