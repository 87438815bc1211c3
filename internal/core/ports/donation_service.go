package ports

import (
	"context"
	"time"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/query"
)

// Caller identifies the authenticated user performing an operation, as
// extracted from the JWT by the auth middleware.
type Caller struct {
	ID   string
	Role string
}

// CreateDonationInput carries all data needed to create a donation. Donor is
// always the caller; Status is forced to "available" by the service.
type CreateDonationInput struct {
	Title              string
	Description        string
	Quantity           float64
	QuantityUnit       string
	Type               domain.FoodType
	ExpiryDate         time.Time
	Images             []string
	Address            domain.Address
	DietaryInfo        domain.DietaryInfo
	PickupTime         *domain.PickupTime
	PickupInstructions string
}

// DonorInfo is the expanded donor relation included on list/get responses.
type DonorInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
}

// DonationView is a donation enriched for read responses: the donor relation
// expanded and the derived time-until-expiry computed.
type DonationView struct {
	Donation        *domain.Donation
	Donor           DonorInfo
	TimeUntilExpiry int64
}

// PageRef points at an adjacent page in a paginated listing.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination describes the neighbouring pages of a listing. Next is present
// only when more pages remain, Prev only when a previous page exists.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// ListDonationsResult is one page of donations plus pagination bookkeeping.
type ListDonationsResult struct {
	Items      []DonationView
	Count      int
	Total      int64
	Pagination Pagination
}

// DonationService defines the donation use cases.
type DonationService interface {
	Create(ctx context.Context, caller Caller, input CreateDonationInput) (*domain.Donation, error)
	Get(ctx context.Context, id string) (*DonationView, error)
	List(ctx context.Context, q query.Query) (*ListDonationsResult, error)
	Update(ctx context.Context, caller Caller, id string, upd DonationUpdate) (*domain.Donation, error)
	Delete(ctx context.Context, caller Caller, id string) error
	// Reserve transitions an available donation to reserved and records the
	// caller as recipient. Fails with domain.ErrNotAvailable when the
	// donation is in any other state.
	Reserve(ctx context.Context, caller Caller, id string) (*domain.Donation, error)
}
