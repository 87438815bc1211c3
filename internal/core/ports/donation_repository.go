package ports

import (
	"context"
	"time"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/query"
)

// DonationUpdate carries the fields a PUT request may change. Nil pointers
// are left untouched. Donor is deliberately absent: it is immutable.
type DonationUpdate struct {
	Title              *string
	Description        *string
	Quantity           *float64
	QuantityUnit       *string
	Type               *domain.FoodType
	ExpiryDate         *time.Time
	Images             *[]string
	Address            *domain.Address
	Status             *domain.DonationStatus
	DietaryInfo        *domain.DietaryInfo
	PickupTime         *domain.PickupTime
	PickupInstructions *string
}

// DonationRepository defines persistence operations for donations.
type DonationRepository interface {
	Create(ctx context.Context, d *domain.Donation) (*domain.Donation, error)
	FindByID(ctx context.Context, id string) (*domain.Donation, error)
	// List returns one page of donations matching q plus the total count of
	// all matching documents.
	List(ctx context.Context, q query.Query) ([]*domain.Donation, int64, error)
	// Update applies the non-nil fields of upd and returns the updated
	// document.
	Update(ctx context.Context, id string, upd DonationUpdate) (*domain.Donation, error)
	Delete(ctx context.Context, id string) error
	// Reserve atomically claims an available donation for recipientID. The
	// conditional update only matches while status is still "available", so
	// exactly one of any set of racing callers succeeds. Returns
	// domain.ErrDonationNotFound when id does not exist and
	// domain.ErrNotAvailable when the donation exists in any other state.
	Reserve(ctx context.Context, id, recipientID string) (*domain.Donation, error)
}
