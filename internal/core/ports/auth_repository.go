package ports

import (
	"context"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// UserRepository defines the persistence operations for account holders.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create stores a new user. It returns domain.ErrEmailRegistered when the
	// email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
