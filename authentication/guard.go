package authentication

import "user-accounts-backend/apperror"

// Access is the privilege an operation requires.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	}
	return "unknown"
}

// Authorize is the role gate: it checks a resolved caller (nil when the request
// carried no token) against the access an operation requires.
func Authorize(caller *Identity, required Access) error {
	if required == Public {
		return nil
	}
	if caller == nil {
		return apperror.ErrMissingToken
	}
	switch required {
	case Authenticated:
		return nil
	case AdminOnly:
		if caller.Role == RoleAdmin {
			return nil
		}
		return apperror.ErrInsufficientRole
	}
	return apperror.ErrInsufficientRole
}
