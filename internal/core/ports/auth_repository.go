package ports

import (
	"context"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users matching ids; missing ids are silently
	// skipped. Used to expand the donor relation on listings.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}
