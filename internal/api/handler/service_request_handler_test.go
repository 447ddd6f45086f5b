package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eldercare/careconnect/internal/core/domain"
	"github.com/eldercare/careconnect/internal/core/ports"
)

type stubRequestService struct {
	createFn func(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error)
	listFn   func(ctx context.Context) ([]*domain.ServiceRequest, error)
	decideFn func(ctx context.Context, in ports.DecideInput) (*domain.ServiceRequest, error)
}

func (s *stubRequestService) Create(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubRequestService) ListPending(ctx context.Context) ([]*domain.ServiceRequest, error) {
	return s.listFn(ctx)
}

func (s *stubRequestService) Decide(ctx context.Context, in ports.DecideInput) (*domain.ServiceRequest, error) {
	return s.decideFn(ctx, in)
}

func authed(c echo.Context, userID string, role domain.Role) echo.Context {
	c.Set("user_id", userID)
	c.Set("role", string(role))
	return c
}

const createBody = `{"userId":"u1","userName":"Alice","userEmail":"alice@example.com","serviceType":"medical","requirements":"help bathing","cost":25.5,"status":"pending","createdAt":"2026-03-01T09:00:00Z"}`

func TestServiceRequestHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubRequestService{
		createFn: func(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
			if in.Cost != 25.5 || in.ServiceType != domain.ServiceMedical || in.IdempotencyKey != "k1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if !in.CreatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
				t.Fatalf("createdAt not forwarded: %v", in.CreatedAt)
			}
			return &ports.CreateRequestResult{Request: &domain.ServiceRequest{ID: "42", UserID: in.UserID, ServiceType: in.ServiceType, Status: domain.StatusPending}}, nil
		},
	}
	c, rec := jsonContext(e, http.MethodPost, "/service-request", createBody)
	c.Request().Header.Set("Idempotency-Key", "k1")

	if err := NewServiceRequestHandler(stub).Create(authed(c, "u1", domain.RolePatient)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["id"] != "42" || resp["status"] != "pending" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if _, ok := resp["caregiverId"]; ok {
		t.Fatalf("caregiver fields must be absent before a decision: %v", resp)
	}
}

func TestServiceRequestHandler_Create_Replay(t *testing.T) {
	e := newTestEcho()
	stub := &stubRequestService{
		createFn: func(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
			return &ports.CreateRequestResult{Request: &domain.ServiceRequest{ID: "42"}, AlreadyExisted: true}, nil
		},
	}
	c, rec := jsonContext(e, http.MethodPost, "/service-request", createBody)

	if err := NewServiceRequestHandler(stub).Create(authed(c, "u1", domain.RoleFamily)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestServiceRequestHandler_Create_RejectsBadCost(t *testing.T) {
	e := newTestEcho()
	stub := &stubRequestService{
		createFn: func(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	body := `{"userId":"u1","serviceType":"medical","requirements":"help bathing","cost":-5}`
	c, _ := jsonContext(e, http.MethodPost, "/service-request", body)

	err := NewServiceRequestHandler(stub).Create(authed(c, "u1", domain.RolePatient))
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Problems) != 1 || ve.Problems[0].Field != "cost" {
		t.Fatalf("expected a single cost problem, got %v", err)
	}
}

func TestServiceRequestHandler_Create_ForeignUser(t *testing.T) {
	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPost, "/service-request", createBody)

	err := NewServiceRequestHandler(&stubRequestService{}).Create(authed(c, "someone-else", domain.RolePatient))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestServiceRequestHandler_ListPending_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubRequestService{
		listFn: func(ctx context.Context) ([]*domain.ServiceRequest, error) { return nil, nil },
	}
	c, rec := jsonContext(e, http.MethodGet, "/service-requests/pending", "")

	if err := NewServiceRequestHandler(stub).ListPending(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "{\"requests\":[]}\n" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestServiceRequestHandler_Decide(t *testing.T) {
	e := newTestEcho()
	var got ports.DecideInput
	stub := &stubRequestService{
		decideFn: func(ctx context.Context, in ports.DecideInput) (*domain.ServiceRequest, error) {
			got = in
			return &domain.ServiceRequest{ID: in.RequestID, Status: domain.StatusApproved, Caregiver: &in.Caregiver}, nil
		},
	}
	c, rec := jsonContext(e, http.MethodPatch, "/service-request/42/approve", `{"caregiverId":"c1","caregiverName":"Carol","caregiverEmail":"carol@example.com"}`)
	c.SetParamNames("id", "action")
	c.SetParamValues("42", "approve")

	if err := NewServiceRequestHandler(stub).Decide(authed(c, "c1", domain.RoleCaregiver)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.RequestID != "42" || got.Decision != domain.DecisionApprove || got.Caregiver.Name != "Carol" {
		t.Fatalf("unexpected decide input: %+v", got)
	}

	var resp struct {
		Request map[string]any `json:"request"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Request["caregiverId"] != "c1" || resp.Request["status"] != "approved" {
		t.Fatalf("unexpected body: %v", resp.Request)
	}
}

func TestServiceRequestHandler_Decide_UnknownAction(t *testing.T) {
	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPatch, "/service-request/42/escalate", `{"caregiverId":"c1"}`)
	c.SetParamNames("id", "action")
	c.SetParamValues("42", "escalate")

	err := NewServiceRequestHandler(&stubRequestService{}).Decide(authed(c, "c1", domain.RoleCaregiver))
	if !errors.Is(err, domain.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestServiceRequestHandler_Decide_MissingClaims(t *testing.T) {
	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPatch, "/service-request/42/approve", `{"caregiverId":"c1"}`)

	err := NewServiceRequestHandler(&stubRequestService{}).Decide(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
