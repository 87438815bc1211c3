package ports

import (
	"context"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
)

// AuditRepository appends lifecycle events to the donation_events audit
// collection.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.LifecycleEvent) error
}

// AuditService processes a single lifecycle event off the dispatcher queue.
type AuditService interface {
	Process(ctx context.Context, event domain.LifecycleEvent) error
}
