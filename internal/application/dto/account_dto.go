package dto

import (
	"time"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/utils"
)

// RegisterRequest 账户注册请求 DTO
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=128"`
	Email    string `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Phone    string `json:"phone" form:"phone" validate:"omitempty,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// LoginRequest 登录请求 DTO. LoginType selects which identifier is matched; empty means username.
type LoginRequest struct {
	LoginType  string `json:"login_type" form:"login_type" validate:"omitempty,oneof=username email phone"`
	Identifier string `json:"identifier" form:"identifier" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
}

// AccountResponse 账户响应 DTO
type AccountResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccountResponse copies the public fields of an account.
func NewAccountResponse(a *models.Account) *AccountResponse {
	return &AccountResponse{
		Username:  a.Username,
		Email:     a.Email,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
	}
}

// Masked hides most of the email and phone for display in logs.
func (r *AccountResponse) Masked() *AccountResponse {
	out := *r
	if out.Email != "" {
		out.Email = utils.MaskEmail(out.Email)
	}
	if out.Phone != "" {
		out.Phone = utils.MaskPhoneNumber(out.Phone)
	}
	return &out
}
