package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/core/domain"
	"github.com/eldercare/careconnect/internal/core/ports"
)

// Sanitizer cleans free text before it is stored.
type Sanitizer interface {
	Sanitize(s string) string
}

// AuditPublisher receives decision events for asynchronous persistence.
type AuditPublisher interface {
	Enqueue(event domain.DecisionEvent)
}

type ServiceRequestService struct {
	repo        ports.ServiceRequestRepository
	idempotency ports.IdempotencyStore
	sanitizer   Sanitizer
	audit       AuditPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

func NewServiceRequestService(
	repo ports.ServiceRequestRepository,
	idempotency ports.IdempotencyStore,
	sanitizer Sanitizer,
	audit AuditPublisher,
	logger zerolog.Logger,
) *ServiceRequestService {
	return &ServiceRequestService{
		repo:        repo,
		idempotency: idempotency,
		sanitizer:   sanitizer,
		audit:       audit,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new pending request. If an idempotency key is provided and
// already seen, the previously created request is returned without side effects.
// The cache lookup is only a fast path; the unique key index in the
// repository decides between concurrent submissions.
func (s *ServiceRequestService) Create(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	requirements := s.sanitizer.Sanitize(in.Requirements)
	switch {
	case in.UserID == "":
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidRequest)
	case !in.ServiceType.Valid():
		return nil, fmt.Errorf("%w: unknown service type %q", domain.ErrInvalidRequest, in.ServiceType)
	case requirements == "":
		return nil, fmt.Errorf("%w: requirements must not be blank", domain.ErrInvalidRequest)
	case in.Cost <= 0 || math.IsNaN(in.Cost) || math.IsInf(in.Cost, 0):
		return nil, fmt.Errorf("%w: cost must be a positive amount", domain.ErrInvalidRequest)
	}

	if in.IdempotencyKey != "" {
		if existing := s.replay(ctx, in.IdempotencyKey); existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("request_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateRequestResult{Request: existing, AlreadyExisted: true}, nil
		}
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	req := &domain.ServiceRequest{
		UserID:         in.UserID,
		UserName:       strings.TrimSpace(in.UserName),
		UserEmail:      strings.TrimSpace(in.UserEmail),
		ServiceType:    in.ServiceType,
		Requirements:   requirements,
		Cost:           in.Cost,
		Status:         domain.StatusPending,
		CreatedAt:      createdAt.UTC(),
		IdempotencyKey: in.IdempotencyKey,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			// A concurrent submission with the same key got there first.
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, in.IdempotencyKey)
			if findErr != nil {
				return nil, fmt.Errorf("replay %s: %w", in.IdempotencyKey, findErr)
			}
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("request_id", existing.ID).Msg("idempotent replay after duplicate insert")
			return &ports.CreateRequestResult{Request: existing, AlreadyExisted: true}, nil
		}
		s.logger.Error().Err(err).Msg("failed to create service request")
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if err := s.idempotency.Remember(ctx, in.IdempotencyKey, req.ID); err != nil {
			s.logger.Warn().Err(err).Str("request_id", req.ID).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().
		Str("request_id", req.ID).
		Str("user_id", req.UserID).
		Str("service_type", string(req.ServiceType)).
		Msg("service request created")

	return &ports.CreateRequestResult{Request: req}, nil
}

// replay returns the request an idempotency key already produced, or nil.
// Store failures are logged and treated as a miss.
func (s *ServiceRequestService) replay(ctx context.Context, key string) *domain.ServiceRequest {
	id, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if id == "" {
		return nil
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return existing
}

func (s *ServiceRequestService) ListPending(ctx context.Context) ([]*domain.ServiceRequest, error) {
	reqs, err := s.repo.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return reqs, nil
}

// Decide applies a caregiver decision. The repository performs the
// pending→terminal move conditionally, so when two caregivers race only the
// first succeeds and the second gets domain.ErrAlreadyDecided.
func (s *ServiceRequestService) Decide(ctx context.Context, in ports.DecideInput) (*domain.ServiceRequest, error) {
	next, ok := in.Decision.Status()
	if !ok {
		return nil, domain.ErrInvalidDecision
	}
	if in.Caregiver.ID == "" {
		return nil, domain.ErrForbidden
	}

	current, err := s.repo.FindByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("decide: %w (%s already %s)", domain.ErrAlreadyDecided, in.RequestID, current.Status)
	}

	updated, err := s.repo.Decide(ctx, in.RequestID, next, in.Caregiver)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyDecided) {
			s.logger.Info().Str("request_id", in.RequestID).Str("caregiver_id", in.Caregiver.ID).Msg("lost decision race")
		}
		return nil, err
	}

	s.audit.Enqueue(domain.DecisionEvent{
		RequestID: in.RequestID,
		Decision:  in.Decision,
		Status:    next,
		Caregiver: in.Caregiver,
		Timestamp: s.now(),
	})

	s.logger.Info().
		Str("request_id", in.RequestID).
		Str("status", string(next)).
		Str("caregiver_id", in.Caregiver.ID).
		Msg("service request decided")

	return updated, nil
}
