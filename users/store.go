package users

import (
	"context"

	"user-accounts-backend/authentication"
)

// Store is the document store holding accounts.
//
// Lookups of a missing account return an error matching apperror.ErrNotFound.
// Writes that would give two accounts the same email return an error matching
// apperror.ErrDuplicateEmail and leave the collection unchanged.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Find(ctx context.Context, q Query) ([]User, error)
	Count(ctx context.Context, f StoreFilter) (int64, error)
	// Insert assigns the account id.
	Insert(ctx context.Context, u *User) error
	// Save replaces an existing account.
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

type StoreFilter struct {
	Role   authentication.Role
	Search string
}

// Query selects a window of accounts. An empty SortField means creation order.
type Query struct {
	Filter     StoreFilter
	SortField  string
	Descending bool
	Skip       int64
	Limit      int64
}
