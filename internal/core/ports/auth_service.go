package ports

import (
	"context"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Organization string
	Phone        string
}

// AuthService implements registration, login and current-user lookup.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
