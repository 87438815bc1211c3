package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
	"github.com/mealbridge/mealbridge-api/internal/core/query"
)

// DonationCache abstracts the read cache (Redis). A (nil, nil) Get is a miss.
// Cache failures are never fatal to the request.
type DonationCache interface {
	Get(ctx context.Context, id string) (*domain.Donation, error)
	Set(ctx context.Context, d *domain.Donation) error
	Invalidate(ctx context.Context, id string) error
}

// AuditSink receives lifecycle events for asynchronous recording.
type AuditSink interface {
	Enqueue(event domain.LifecycleEvent)
}

type DonationService struct {
	repo   ports.DonationRepository
	users  ports.UserRepository
	cache  DonationCache
	audit  AuditSink
	logger zerolog.Logger
}

func NewDonationService(
	repo ports.DonationRepository,
	users ports.UserRepository,
	cache DonationCache,
	audit AuditSink,
	logger zerolog.Logger,
) *DonationService {
	return &DonationService{repo: repo, users: users, cache: cache, audit: audit, logger: logger}
}

// Create stores a new donation owned by the caller. Status is always
// "available" and the recipient is unset, regardless of input.
func (s *DonationService) Create(ctx context.Context, caller ports.Caller, input ports.CreateDonationInput) (*domain.Donation, error) {
	// Explicit pre-check, separate from request-schema validation.
	if input.Address.City == "" {
		return nil, domain.NewValidationError("City is required in the address")
	}

	now := time.Now().UTC()
	donation := &domain.Donation{
		Title:              input.Title,
		Description:        input.Description,
		Quantity:           input.Quantity,
		QuantityUnit:       input.QuantityUnit,
		Type:               input.Type,
		ExpiryDate:         input.ExpiryDate,
		Images:             input.Images,
		Address:            input.Address,
		Status:             domain.StatusAvailable,
		Donor:              caller.ID,
		DietaryInfo:        input.DietaryInfo,
		PickupTime:         input.PickupTime,
		PickupInstructions: input.PickupInstructions,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if donation.Images == nil {
		donation.Images = []string{}
	}

	created, err := s.repo.Create(ctx, donation)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create donation")
		return nil, err
	}

	s.enqueueAudit(domain.LifecycleEvent{
		DonationID: created.ID,
		To:         domain.StatusAvailable,
		Actor:      caller.ID,
		Timestamp:  now,
	})

	s.logger.Info().
		Str("donation_id", created.ID).
		Str("donor", caller.ID).
		Str("type", string(created.Type)).
		Msg("donation created")

	return created, nil
}

// Get fetches a single donation with the donor relation expanded. Reads go
// through the cache when one is configured.
func (s *DonationService) Get(ctx context.Context, id string) (*ports.DonationView, error) {
	donation := s.cacheGet(ctx, id)
	if donation == nil {
		var err error
		donation, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, donation)
	}

	view := s.toView(donation, s.donorMap(ctx, []*domain.Donation{donation}))
	return &view, nil
}

// List returns one page of donations matching q, donor expanded on every item.
func (s *DonationService) List(ctx context.Context, q query.Query) (*ports.ListDonationsResult, error) {
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list donations")
		return nil, err
	}

	donors := s.donorMap(ctx, items)
	views := make([]ports.DonationView, len(items))
	for i, d := range items {
		views[i] = s.toView(d, donors)
	}

	result := &ports.ListDonationsResult{
		Items: views,
		Count: len(views),
		Total: total,
	}
	if int64(q.Page*q.Limit) < total {
		result.Pagination.Next = &ports.PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		result.Pagination.Prev = &ports.PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return result, nil
}

// Update applies a partial edit after the ownership check. Cross-field
// lifecycle invariants are deliberately not re-validated here; status and
// recipient consistency on generic edits remains the caller's concern.
func (s *DonationService) Update(ctx context.Context, caller ports.Caller, id string, upd ports.DonationUpdate) (*domain.Donation, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutate(existing, caller.ID, caller.Role) {
		return nil, domain.ErrNotAuthorized
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		s.logger.Error().Err(err).Str("donation_id", id).Msg("failed to update donation")
		return nil, err
	}
	s.cacheInvalidate(ctx, id)

	if upd.Status != nil && *upd.Status != existing.Status {
		s.enqueueAudit(domain.LifecycleEvent{
			DonationID: id,
			From:       existing.Status,
			To:         *upd.Status,
			Actor:      caller.ID,
			Timestamp:  time.Now().UTC(),
		})
	}

	return updated, nil
}

// Delete removes the donation unconditionally once ownership is verified.
func (s *DonationService) Delete(ctx context.Context, caller ports.Caller, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutate(existing, caller.ID, caller.Role) {
		return domain.ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("donation_id", id).Msg("failed to delete donation")
		return err
	}
	s.cacheInvalidate(ctx, id)

	s.logger.Info().Str("donation_id", id).Str("caller", caller.ID).Msg("donation deleted")
	return nil
}

// Reserve claims an available donation for the caller via a single
// conditional update; when two callers race, exactly one wins and the other
// observes domain.ErrNotAvailable.
func (s *DonationService) Reserve(ctx context.Context, caller ports.Caller, id string) (*domain.Donation, error) {
	reserved, err := s.repo.Reserve(ctx, id, caller.ID)
	if err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, id)

	s.enqueueAudit(domain.LifecycleEvent{
		DonationID: id,
		From:       domain.StatusAvailable,
		To:         domain.StatusReserved,
		Actor:      caller.ID,
		Timestamp:  time.Now().UTC(),
	})

	s.logger.Info().
		Str("donation_id", id).
		Str("recipient", caller.ID).
		Msg("donation reserved")

	return reserved, nil
}

// donorMap resolves the donor users referenced by donations into an
// id → DonorInfo map. Lookup failures degrade to bare ids.
func (s *DonationService) donorMap(ctx context.Context, donations []*domain.Donation) map[string]ports.DonorInfo {
	seen := make(map[string]struct{}, len(donations))
	ids := make([]string, 0, len(donations))
	for _, d := range donations {
		if _, ok := seen[d.Donor]; ok {
			continue
		}
		seen[d.Donor] = struct{}{}
		ids = append(ids, d.Donor)
	}

	out := make(map[string]ports.DonorInfo, len(ids))
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("donor lookup failed")
		return out
	}
	for _, u := range users {
		out[u.ID] = ports.DonorInfo{ID: u.ID, Name: u.Name, Organization: u.Organization}
	}
	return out
}

func (s *DonationService) toView(d *domain.Donation, donors map[string]ports.DonorInfo) ports.DonationView {
	donor, ok := donors[d.Donor]
	if !ok {
		donor = ports.DonorInfo{ID: d.Donor}
	}
	return ports.DonationView{
		Donation:        d,
		Donor:           donor,
		TimeUntilExpiry: d.TimeUntilExpiry(time.Now().UTC()),
	}
}

func (s *DonationService) enqueueAudit(event domain.LifecycleEvent) {
	if s.audit != nil {
		s.audit.Enqueue(event)
	}
}

func (s *DonationService) cacheGet(ctx context.Context, id string) *domain.Donation {
	if s.cache == nil {
		return nil
	}
	d, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("donation_id", id).Msg("cache read failed")
		return nil
	}
	return d
}

func (s *DonationService) cacheSet(ctx context.Context, d *domain.Donation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, d); err != nil {
		s.logger.Warn().Err(err).Str("donation_id", d.ID).Msg("cache write failed")
	}
}

func (s *DonationService) cacheInvalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("donation_id", id).Msg("cache invalidation failed")
	}
}
