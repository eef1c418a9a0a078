package dto

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// CreateUserRequest payload for HR-created accounts.
type CreateUserRequest struct {
	FullName string      `json:"fullName" validate:"required,max=200"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     domain.Role `json:"role" validate:"required,oneof=WarehouseManager HR Employee Admin"`
}

// UpdateUserRequest payload; omitted fields are left unchanged.
type UpdateUserRequest struct {
	FullName *string      `json:"fullName" validate:"omitempty,max=200"`
	Role     *domain.Role `json:"role" validate:"omitempty,oneof=WarehouseManager HR Employee Admin"`
	Active   *bool        `json:"active"`
	Password *string      `json:"password" validate:"omitempty,min=8"`
}

// UserResponse is the public user shape. The password hash never leaves the service.
type UserResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"fullName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
