package ports

import (
	"context"
	"time"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// CreateRequestInput is the DTO passed from the transport layer to the
// request service.
type CreateRequestInput struct {
	UserID         string
	UserName       string
	UserEmail      string
	ServiceType    domain.ServiceType
	Requirements   string
	Cost           float64
	CreatedAt      time.Time
	IdempotencyKey string
}

// CreateRequestResult wraps the stored request.
type CreateRequestResult struct {
	Request *domain.ServiceRequest
	// AlreadyExisted is true when the Idempotency-Key matched an earlier submission.
	AlreadyExisted bool
}

// DecideInput carries a caregiver decision on one request.
type DecideInput struct {
	RequestID string
	Decision  domain.Decision
	Caregiver domain.Caregiver
}

// ServiceRequestService defines use-case operations for service requests.
type ServiceRequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*CreateRequestResult, error)
	ListPending(ctx context.Context) ([]*domain.ServiceRequest, error)
	Decide(ctx context.Context, in DecideInput) (*domain.ServiceRequest, error)
}
