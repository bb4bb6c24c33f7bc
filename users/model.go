package users

import (
	"time"

	"user-accounts-backend/authentication"
)

// User is the stored account document.
type User struct {
	ID           string              `bson:"_id"`
	Username     string              `bson:"username"`
	Email        string              `bson:"email"`
	PasswordHash string              `bson:"password_hash"`
	Address      string              `bson:"address"`
	Role         authentication.Role `bson:"role"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

func (u *User) Identity() *authentication.Identity {
	return &authentication.Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// UserResponse is the public view of a User; the credential never leaves the server.
type UserResponse struct {
	ID        string              `json:"id"`
	Username  string              `json:"username"`
	Email     string              `json:"email"`
	Address   string              `json:"address"`
	Role      authentication.Role `json:"role"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(list []User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, NewUserResponse(&list[i]))
	}
	return out
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Address  string `json:"address" validate:"required,max=256"`
	Role     string `json:"role" validate:"omitempty,oneof=User Admin user admin"`
}

// UpdateUserRequest changes profile fields only; empty fields are left untouched.
// Password and role cannot be changed through it.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"omitempty,max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address" validate:"omitempty,max=256"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=72"`
}

type Pagination struct {
	Limit int `json:"limit" form:"limit"`
	Page  int `json:"page" form:"page"`
}

type Sort struct {
	SortBy    string `json:"sortBy" form:"sortBy"`
	SortOrder string `json:"sortOrder" form:"sortOrder"`
}

type Filter struct {
	Role   string `json:"role" form:"role"`
	Search string `json:"search" form:"search"`
}

type ListUsersRequest struct {
	Pagination Pagination `json:"pagination"`
	Sort       Sort       `json:"sort"`
	Filter     Filter     `json:"filter"`
}
