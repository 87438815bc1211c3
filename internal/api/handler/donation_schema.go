package handler

import (
	"time"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
)

// --- Request types ---

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type dietaryInfoRequest struct {
	IsVegetarian bool `json:"isVegetarian"`
	IsVegan      bool `json:"isVegan"`
	IsGlutenFree bool `json:"isGlutenFree"`
	IsNutFree    bool `json:"isNutFree"`
	IsDairyFree  bool `json:"isDairyFree"`
}

type pickupTimeRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

type createDonationRequest struct {
	Title              string             `json:"title" validate:"required,max=100"`
	Description        string             `json:"description" validate:"required,max=500"`
	Quantity           float64            `json:"quantity" validate:"required,gt=0"`
	QuantityUnit       string             `json:"quantityUnit" validate:"required"`
	Type               string             `json:"type" validate:"required,oneof='cooked meal' 'raw ingredients' 'packaged food' beverages bakery 'fruits & vegetables' other"`
	ExpiryDate         time.Time          `json:"expiryDate" validate:"required"`
	Images             []string           `json:"images"`
	Address            addressRequest     `json:"address"`
	DietaryInfo        dietaryInfoRequest `json:"dietaryInfo"`
	PickupTime         *pickupTimeRequest `json:"pickupTime"`
	PickupInstructions string             `json:"pickupInstructions"`
}

// updateDonationRequest is a partial edit: nil fields are left untouched.
type updateDonationRequest struct {
	Title              *string             `json:"title" validate:"omitempty,max=100"`
	Description        *string             `json:"description" validate:"omitempty,max=500"`
	Quantity           *float64            `json:"quantity" validate:"omitempty,gt=0"`
	QuantityUnit       *string             `json:"quantityUnit"`
	Type               *string             `json:"type" validate:"omitempty,oneof='cooked meal' 'raw ingredients' 'packaged food' beverages bakery 'fruits & vegetables' other"`
	ExpiryDate         *time.Time          `json:"expiryDate"`
	Images             *[]string           `json:"images"`
	Address            *addressRequest     `json:"address"`
	Status             *string             `json:"status" validate:"omitempty,oneof=available reserved completed cancelled"`
	DietaryInfo        *dietaryInfoRequest `json:"dietaryInfo"`
	PickupTime         *pickupTimeRequest  `json:"pickupTime"`
	PickupInstructions *string             `json:"pickupInstructions"`
}

// --- Response envelopes ---

// dataEnvelope wraps every successful single-object response.
type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func ok(data any) dataEnvelope {
	return dataEnvelope{Success: true, Data: data}
}

// donationDetailResponse is the read shape: the stored record plus the
// expanded donor relation and the derived time until expiry.
type donationDetailResponse struct {
	*domain.Donation
	Donor           ports.DonorInfo `json:"donor"`
	TimeUntilExpiry int64           `json:"timeUntilExpiry"`
}

// listDonationsEnvelope carries one page of donations. Count is the number
// of items on this page; pagination holds next/prev refs when applicable.
type listDonationsEnvelope struct {
	Success    bool                     `json:"success"`
	Count      int                      `json:"count"`
	Pagination ports.Pagination         `json:"pagination"`
	Data       []donationDetailResponse `json:"data"`
}
