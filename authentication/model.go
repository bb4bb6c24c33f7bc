package authentication

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"user-accounts-backend/apperror"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole accepts the role names case-insensitively; an empty value is RoleUser.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", apperror.New(apperror.ErrValidation, "role must be one of User, Admin")
}

// Identity is who a caller is, as asserted by a session token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Claims is the signed payload of a session token. The account id travels as the subject.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
