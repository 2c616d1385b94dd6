package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether s is one of the three account roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	Name         string    `json:"nome"`
	Role         Role      `json:"user_type"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"nome" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=6"`
	Role     string `json:"user_type,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required"`
}

type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"nova_senha" validate:"required"`
}
