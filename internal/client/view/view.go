// Package view selects and runs the role-specific screen for the signed-in
// user: care-seekers get a submission form, caregivers a polled pending list.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/auth"
	"github.com/eldercare/careconnect/internal/client/poll"
	"github.com/eldercare/careconnect/internal/client/request"
	"github.com/eldercare/careconnect/internal/core/domain"
)

var (
	// ErrLoading is returned while the identity cache has not settled yet.
	ErrLoading    = errors.New("identity still loading")
	ErrNoRole     = errors.New("user has no usable role")
	errMounted    = errors.New("view already mounted")
	errNotMounted = errors.New("view not mounted")
)

// API is everything the views send to the backend.
type API interface {
	request.Creator
	request.PendingLister
	request.Decider
}

type Deps struct {
	API          API
	PollInterval time.Duration
	Log          zerolog.Logger
}

// View is one role's screen. Mount must be paired with Unmount.
type View interface {
	Role() domain.Role
	Mount(ctx context.Context) error
	Unmount()
}

// For picks the view for the current identity.
func For(ac *auth.Context, deps Deps) (View, error) {
	switch ac.State() {
	case auth.StateLoading:
		return nil, ErrLoading
	case auth.StateAnonymous:
		return nil, auth.ErrAnonymous
	}

	user := ac.User()
	if user == nil {
		return nil, auth.ErrAnonymous
	}
	switch {
	case user.Role.Seeker():
		return NewPatientView(user.Role, ac, deps), nil
	case user.Role == domain.RoleCaregiver:
		return NewCaregiverView(ac, deps), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoRole, user.Role)
}

// PatientView lets a patient or family member submit service requests.
type PatientView struct {
	role      domain.Role
	Form      request.Form
	submitter *request.Submitter
}

func NewPatientView(role domain.Role, ac *auth.Context, deps Deps) *PatientView {
	return &PatientView{
		role:      role,
		submitter: request.NewSubmitter(deps.API, ac, deps.Log),
	}
}

func (v *PatientView) Role() domain.Role               { return v.role }
func (v *PatientView) Mount(ctx context.Context) error { return nil }
func (v *PatientView) Unmount()                        {}

// Submit sends the current form.
func (v *PatientView) Submit(ctx context.Context) (request.Outcome, error) {
	return v.submitter.Submit(ctx, &v.Form)
}

// CaregiverView keeps the pending list fresh while mounted and acts on it.
type CaregiverView struct {
	pending *request.PendingView
	actions *request.ActionService
	refresh poll.FetchFunc
	engine  *poll.Engine

	mu     sync.Mutex
	handle *poll.Handle
}

func NewCaregiverView(ac *auth.Context, deps Deps) *CaregiverView {
	pending := request.NewPendingView()
	refresh := request.Refresher(deps.API, pending)
	return &CaregiverView{
		pending: pending,
		actions: request.NewActionService(deps.API, pending, ac, deps.Log),
		refresh: refresh,
		engine:  poll.New(deps.PollInterval, refresh, deps.Log),
	}
}

func (v *CaregiverView) Role() domain.Role { return domain.RoleCaregiver }

// Mount starts polling.
func (v *CaregiverView) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != nil {
		return errMounted
	}
	v.handle = v.engine.Start(ctx)
	return nil
}

// Unmount stops polling; no fetch happens after it returns.
func (v *CaregiverView) Unmount() {
	v.mu.Lock()
	h := v.handle
	v.handle = nil
	v.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

// Polling reports whether the view is mounted and its loop still running.
func (v *CaregiverView) Polling() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handle != nil && v.handle.Polling()
}

func (v *CaregiverView) Pending() []domain.ServiceRequest { return v.pending.List() }

// Refresh fetches the pending list once, outside the polling schedule.
func (v *CaregiverView) Refresh(ctx context.Context) error {
	return v.refresh(ctx)
}

func (v *CaregiverView) Approve(ctx context.Context, requestID string) (bool, error) {
	return v.act(ctx, requestID, domain.DecisionApprove)
}

func (v *CaregiverView) Reject(ctx context.Context, requestID string) (bool, error) {
	return v.act(ctx, requestID, domain.DecisionReject)
}

func (v *CaregiverView) act(ctx context.Context, requestID string, d domain.Decision) (bool, error) {
	v.mu.Lock()
	mounted := v.handle != nil
	v.mu.Unlock()
	if !mounted {
		return false, errNotMounted
	}
	return v.actions.Act(ctx, requestID, d)
}

func (v *CaregiverView) InFlight(requestID string) bool { return v.actions.InFlight(requestID) }
