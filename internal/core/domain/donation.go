package domain

import (
	"errors"
	"strings"
	"time"
)

// DonationStatus represents the lifecycle state of a donation.
type DonationStatus string

const (
	StatusAvailable DonationStatus = "available"
	StatusReserved  DonationStatus = "reserved"
	StatusCompleted DonationStatus = "completed"
	StatusCancelled DonationStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// completed and cancelled are terminal.
var validTransitions = map[DonationStatus][]DonationStatus{
	StatusAvailable: {StatusReserved, StatusCancelled},
	StatusReserved:  {StatusCompleted, StatusCancelled},
}

var ErrDonationNotFound = errors.New("donation not found")
var ErrNotAvailable = errors.New("donation is not available for reservation")
var ErrNotAuthorized = errors.New("not authorized to modify this donation")
var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FoodType enumerates the donation categories.
type FoodType string

const (
	TypeCookedMeal      FoodType = "cooked meal"
	TypeRawIngredients  FoodType = "raw ingredients"
	TypePackagedFood    FoodType = "packaged food"
	TypeBeverages       FoodType = "beverages"
	TypeBakery          FoodType = "bakery"
	TypeFruitsAndVeggie FoodType = "fruits & vegetables"
	TypeOther           FoodType = "other"
)

// FoodTypes lists every legal donation category, in display order.
var FoodTypes = []FoodType{
	TypeCookedMeal,
	TypeRawIngredients,
	TypePackagedFood,
	TypeBeverages,
	TypeBakery,
	TypeFruitsAndVeggie,
	TypeOther,
}

// Address is the pickup location embedded in a donation. City is the only
// required component.
type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

// DietaryInfo carries the dietary flags shown to recipients.
type DietaryInfo struct {
	IsVegetarian bool `json:"isVegetarian" bson:"isVegetarian"`
	IsVegan      bool `json:"isVegan" bson:"isVegan"`
	IsGlutenFree bool `json:"isGlutenFree" bson:"isGlutenFree"`
	IsNutFree    bool `json:"isNutFree" bson:"isNutFree"`
	IsDairyFree  bool `json:"isDairyFree" bson:"isDairyFree"`
}

// PickupTime is the optional window during which the donation can be collected.
type PickupTime struct {
	Start *time.Time `json:"start,omitempty" bson:"start,omitempty"`
	End   *time.Time `json:"end,omitempty" bson:"end,omitempty"`
}

// Donation is the core aggregate: a listed unit of food owned by a donor.
// Donor is set once at creation and never changes; Recipient is set only by
// the reservation operation.
type Donation struct {
	ID                 string         `json:"id" bson:"_id,omitempty"`
	Title              string         `json:"title" bson:"title"`
	Description        string         `json:"description" bson:"description"`
	Quantity           float64        `json:"quantity" bson:"quantity"`
	QuantityUnit       string         `json:"quantityUnit" bson:"quantityUnit"`
	Type               FoodType       `json:"type" bson:"type"`
	ExpiryDate         time.Time      `json:"expiryDate" bson:"expiryDate"`
	Images             []string       `json:"images" bson:"images"`
	Address            Address        `json:"address" bson:"address"`
	Status             DonationStatus `json:"status" bson:"status"`
	Donor              string         `json:"donor" bson:"donor"`
	Recipient          string         `json:"recipient,omitempty" bson:"recipient,omitempty"`
	DietaryInfo        DietaryInfo    `json:"dietaryInfo" bson:"dietaryInfo"`
	PickupTime         *PickupTime    `json:"pickupTime,omitempty" bson:"pickupTime,omitempty"`
	PickupInstructions string         `json:"pickupInstructions,omitempty" bson:"pickupInstructions,omitempty"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// TimeUntilExpiry returns expiryDate - now in milliseconds. It is derived on
// read and never stored.
func (d *Donation) TimeUntilExpiry(now time.Time) int64 {
	return d.ExpiryDate.Sub(now).Milliseconds()
}

// CanMutate reports whether the caller may update or delete the donation:
// the owning donor, or any admin.
func CanMutate(d *Donation, callerID, role string) bool {
	return d.Donor == callerID || role == RoleAdmin
}

// ValidationError aggregates per-field validation messages for a single
// request. It maps to HTTP 400 with an errors array.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
