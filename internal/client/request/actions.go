package request

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/auth"
	"github.com/eldercare/careconnect/internal/core/domain"
)

// Decider sends a caregiver decision to the backend.
type Decider interface {
	Decide(ctx context.Context, requestID string, decision domain.Decision, caregiver domain.Caregiver) (*domain.ServiceRequest, error)
}

// ActionService approves or rejects pending requests, at most one call per
// request id at a time.
type ActionService struct {
	api      Decider
	view     *PendingView
	identity Identity
	log      zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewActionService(api Decider, view *PendingView, identity Identity, log zerolog.Logger) *ActionService {
	return &ActionService{
		api:      api,
		view:     view,
		identity: identity,
		log:      log,
		inFlight: make(map[string]struct{}),
	}
}

// Act sends decision for requestID. It returns false without calling the
// backend when an action on the same id is already outstanding. On success
// the request leaves the pending view; on failure the view is unchanged.
func (s *ActionService) Act(ctx context.Context, requestID string, decision domain.Decision) (bool, error) {
	if _, ok := decision.Status(); !ok {
		return false, domain.ErrInvalidDecision
	}
	user := s.identity.User()
	if user == nil {
		return false, auth.ErrAnonymous
	}

	if !s.acquire(requestID) {
		return false, nil
	}
	defer s.release(requestID)

	_, err := s.api.Decide(ctx, requestID, decision, domain.Caregiver{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", requestID).Str("decision", string(decision)).Msg("action failed")
		return true, fmt.Errorf("%s request %s: %w", decision, requestID, err)
	}

	s.view.Remove(requestID)
	s.log.Info().Str("request_id", requestID).Str("decision", string(decision)).Msg("request actioned")
	return true, nil
}

// InFlight reports whether an action on requestID is outstanding.
func (s *ActionService) InFlight(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[requestID]
	return ok
}

func (s *ActionService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *ActionService) release(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
