package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/auth"
	"github.com/eldercare/careconnect/internal/client/careapi"
	"github.com/eldercare/careconnect/internal/client/request"
	"github.com/eldercare/careconnect/internal/client/session"
	"github.com/eldercare/careconnect/internal/core/domain"
)

type fakeAPI struct {
	mu        sync.Mutex
	lists     int
	decisions int
	pending   []domain.ServiceRequest
}

func (f *fakeAPI) CreateRequest(ctx context.Context, req careapi.NewRequest, key string) (*domain.ServiceRequest, error) {
	return &domain.ServiceRequest{ID: "1", Status: domain.StatusPending}, nil
}

func (f *fakeAPI) ListPending(ctx context.Context) ([]domain.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.pending, nil
}

func (f *fakeAPI) Decide(ctx context.Context, id string, d domain.Decision, cg domain.Caregiver) (*domain.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions++
	return &domain.ServiceRequest{ID: id}, nil
}

func (f *fakeAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func authAs(t *testing.T, role domain.Role) *auth.Context {
	t.Helper()
	ac := auth.NewContext(session.NewStore(session.NewMemoryTier(), session.NewMemoryTier(), zerolog.Nop()), zerolog.Nop())
	if role != "" {
		if err := ac.Login(context.Background(), session.Session{User: domain.User{ID: "u1", Role: role}}, false); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	return ac
}

func TestFor_Dispatch(t *testing.T) {
	deps := Deps{API: &fakeAPI{}, Log: zerolog.Nop()}

	for _, role := range []domain.Role{domain.RolePatient, domain.RoleFamily} {
		v, err := For(authAs(t, role), deps)
		if err != nil {
			t.Fatalf("%s: %v", role, err)
		}
		if _, ok := v.(*PatientView); !ok || v.Role() != role {
			t.Fatalf("%s: expected PatientView, got %T", role, v)
		}
	}

	v, err := For(authAs(t, domain.RoleCaregiver), deps)
	if err != nil {
		t.Fatalf("caregiver: %v", err)
	}
	if _, ok := v.(*CaregiverView); !ok {
		t.Fatalf("expected CaregiverView, got %T", v)
	}
}

func TestFor_RefusesWhileLoading(t *testing.T) {
	ac := authAs(t, "")
	if _, err := For(ac, Deps{API: &fakeAPI{}}); !errors.Is(err, ErrLoading) {
		t.Fatalf("expected ErrLoading, got %v", err)
	}

	ac.Init(context.Background())
	if _, err := For(ac, Deps{API: &fakeAPI{}}); !errors.Is(err, auth.ErrAnonymous) {
		t.Fatalf("expected ErrAnonymous after init, got %v", err)
	}
}

func TestCaregiverView_UnmountStopsPolling(t *testing.T) {
	api := &fakeAPI{pending: []domain.ServiceRequest{{ID: "42"}}}
	cv := NewCaregiverView(authAs(t, domain.RoleCaregiver), Deps{API: api, PollInterval: 5 * time.Millisecond, Log: zerolog.Nop()})

	if err := cv.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := cv.Mount(context.Background()); err == nil {
		t.Fatalf("second mount should fail")
	}
	time.Sleep(25 * time.Millisecond)
	cv.Unmount()

	if cv.Polling() {
		t.Fatalf("still polling after unmount")
	}
	before := api.listCalls()
	if before == 0 {
		t.Fatalf("expected fetches while mounted")
	}
	time.Sleep(25 * time.Millisecond)
	if after := api.listCalls(); after != before {
		t.Fatalf("fetch after unmount: %d -> %d", before, after)
	}
}

func TestCaregiverView_ApproveRemovesRequest(t *testing.T) {
	api := &fakeAPI{pending: []domain.ServiceRequest{{ID: "42"}, {ID: "43"}}}
	cv := NewCaregiverView(authAs(t, domain.RoleCaregiver), Deps{API: api, PollInterval: time.Hour, Log: zerolog.Nop()})

	if _, err := cv.Approve(context.Background(), "42"); err == nil {
		t.Fatalf("acting on an unmounted view should fail")
	}

	_ = cv.Mount(context.Background())
	defer cv.Unmount()
	deadline := time.Now().Add(time.Second)
	for len(cv.Pending()) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	sent, err := cv.Approve(context.Background(), "42")
	if !sent || err != nil {
		t.Fatalf("approve: sent=%v err=%v", sent, err)
	}
	for _, r := range cv.Pending() {
		if r.ID == "42" {
			t.Fatalf("42 still pending")
		}
	}
}

func TestPatientView_Submit(t *testing.T) {
	v := NewPatientView(domain.RolePatient, authAs(t, domain.RolePatient), Deps{API: &fakeAPI{}, Log: zerolog.Nop()})
	v.Form = request.Form{ServiceType: "household", Requirements: "laundry", Cost: "15"}

	out, err := v.Submit(context.Background())
	if err != nil || out.Request == nil {
		t.Fatalf("submit: %+v, %v", out, err)
	}
	if v.Form != (request.Form{}) {
		t.Fatalf("form not cleared")
	}
}

func TestCaregiverView_RefreshOutsideSchedule(t *testing.T) {
	api := &fakeAPI{pending: []domain.ServiceRequest{{ID: "7"}}}
	cv := NewCaregiverView(authAs(t, domain.RoleCaregiver), Deps{API: api, Log: zerolog.Nop()})

	if err := cv.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := cv.Pending(); len(got) != 1 || got[0].ID != "7" {
		t.Fatalf("unexpected pending %+v", got)
	}
}
