package user

type UpdateUserRequestDto struct {
	FullName *string   `json:"full_name" binding:"omitempty,min=2,max=150"`
	Email    *string   `json:"email" binding:"omitempty,email"`
	Position *Position `json:"position" binding:"omitempty,oneof=admin manager employee"`
	Active   *bool     `json:"active"`
	Password *string   `json:"password" binding:"omitempty,min=8"`
}

func (r UpdateUserRequestDto) toInput() UpdateInput {
	return UpdateInput{
		FullName: r.FullName,
		Email:    r.Email,
		Position: r.Position,
		Active:   r.Active,
		Password: r.Password,
	}
}

type ListUserRequestDto struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"size" binding:"omitempty,min=1,max=100"`
}

type UserIDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}
