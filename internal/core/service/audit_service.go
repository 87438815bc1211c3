package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that appends lifecycle events to
// the donation_events audit trail.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process records a single lifecycle event. Transitions outside the state
// machine are recorded anyway (generic updates are unrestricted) but flagged
// in the log so illegal manual edits are visible.
func (s *auditService) Process(ctx context.Context, event domain.LifecycleEvent) error {
	if event.From != "" && !event.From.CanTransitionTo(event.To) {
		s.log.Warn().
			Str("donation_id", event.DonationID).
			Str("from", string(event.From)).
			Str("to", string(event.To)).
			Str("actor", event.Actor).
			Msg("recorded status edit outside the lifecycle state machine")
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("record lifecycle event: %w", err)
	}

	s.log.Debug().
		Str("donation_id", event.DonationID).
		Str("to", string(event.To)).
		Msg("lifecycle event recorded")

	return nil
}
