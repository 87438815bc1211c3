package handler

import (
	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createDonationRequest) ports.CreateDonationInput {
	in := ports.CreateDonationInput{
		Title:              req.Title,
		Description:        req.Description,
		Quantity:           req.Quantity,
		QuantityUnit:       req.QuantityUnit,
		Type:               domain.FoodType(req.Type),
		ExpiryDate:         req.ExpiryDate,
		Images:             req.Images,
		Address:            toAddress(req.Address),
		DietaryInfo:        toDietaryInfo(req.DietaryInfo),
		PickupInstructions: req.PickupInstructions,
	}
	if req.PickupTime != nil {
		in.PickupTime = &domain.PickupTime{Start: req.PickupTime.Start, End: req.PickupTime.End}
	}
	return in
}

func toUpdate(req updateDonationRequest) ports.DonationUpdate {
	upd := ports.DonationUpdate{
		Title:              req.Title,
		Description:        req.Description,
		Quantity:           req.Quantity,
		QuantityUnit:       req.QuantityUnit,
		ExpiryDate:         req.ExpiryDate,
		Images:             req.Images,
		PickupInstructions: req.PickupInstructions,
	}
	if req.Type != nil {
		t := domain.FoodType(*req.Type)
		upd.Type = &t
	}
	if req.Status != nil {
		s := domain.DonationStatus(*req.Status)
		upd.Status = &s
	}
	if req.Address != nil {
		a := toAddress(*req.Address)
		upd.Address = &a
	}
	if req.DietaryInfo != nil {
		di := toDietaryInfo(*req.DietaryInfo)
		upd.DietaryInfo = &di
	}
	if req.PickupTime != nil {
		upd.PickupTime = &domain.PickupTime{Start: req.PickupTime.Start, End: req.PickupTime.End}
	}
	return upd
}

func toAddress(a addressRequest) domain.Address {
	return domain.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

func toDietaryInfo(d dietaryInfoRequest) domain.DietaryInfo {
	return domain.DietaryInfo{
		IsVegetarian: d.IsVegetarian,
		IsVegan:      d.IsVegan,
		IsGlutenFree: d.IsGlutenFree,
		IsNutFree:    d.IsNutFree,
		IsDairyFree:  d.IsDairyFree,
	}
}

// --- Service result → HTTP response ---

func toDetailResponse(v *ports.DonationView) donationDetailResponse {
	return donationDetailResponse{
		Donation:        v.Donation,
		Donor:           v.Donor,
		TimeUntilExpiry: v.TimeUntilExpiry,
	}
}

func toListEnvelope(r *ports.ListDonationsResult) listDonationsEnvelope {
	items := make([]donationDetailResponse, len(r.Items))
	for i := range r.Items {
		items[i] = toDetailResponse(&r.Items[i])
	}
	return listDonationsEnvelope{
		Success:    true,
		Count:      r.Count,
		Pagination: r.Pagination,
		Data:       items,
	}
}
