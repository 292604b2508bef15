package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued session token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterUserRequest payload.
type RegisterUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UpdateProfileRequest payload for self-service changes.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserResponse exposes account fields; the password hash never leaves the
// service boundary.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// FromUser maps a domain user to the response shape.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// FromUsers maps a slice of users.
func FromUsers(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, FromUser(&users[i]))
	}
	return items
}
