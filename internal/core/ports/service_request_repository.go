package ports

import (
	"context"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// ServiceRequestRepository defines persistence operations for service requests.
type ServiceRequestRepository interface {
	// Create inserts r and sets r.ID. A second request carrying an
	// idempotency key that is already stored yields domain.ErrDuplicateKey.
	Create(ctx context.Context, r *domain.ServiceRequest) error
	FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.ServiceRequest, error)
	// ListByStatus returns requests in the given status, oldest first.
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.ServiceRequest, error)
	// Decide moves a pending request to status and records the caregiver.
	// Only a request still in pending is updated; a request that exists but
	// was already decided yields domain.ErrAlreadyDecided.
	Decide(ctx context.Context, id string, status domain.RequestStatus, caregiver domain.Caregiver) (*domain.ServiceRequest, error)
}

// DecisionEventRepository persists the decision audit trail.
type DecisionEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.DecisionEvent) error
}

// IdempotencyStore remembers which request a submission key produced.
type IdempotencyStore interface {
	// Lookup returns the request id stored for key, or "" when unseen.
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, requestID string) error
}
