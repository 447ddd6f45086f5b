package ports

import (
	"context"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// SignupInput carries the registration form after transport validation.
type SignupInput struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth string
	Role        domain.Role
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
