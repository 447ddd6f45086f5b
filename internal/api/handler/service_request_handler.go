package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eldercare/careconnect/internal/api/metrics"
	"github.com/eldercare/careconnect/internal/core/domain"
	"github.com/eldercare/careconnect/internal/core/ports"
)

// ServiceRequestHandler handles the service request lifecycle endpoints.
type ServiceRequestHandler struct {
	service ports.ServiceRequestService
}

func NewServiceRequestHandler(service ports.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{service: service}
}

// Create handles POST /service-request.
//
// @Summary      Submit a service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                       false  "Key that makes resubmission safe"
// @Param        body             body      createServiceRequestRequest  true   "Request details"
// @Success      201              {object}  domain.ServiceRequest
// @Success      200              {object}  domain.ServiceRequest  "idempotent replay"
// @Failure      400              {object}  detailResponse
// @Failure      401              {object}  detailResponse
// @Failure      403              {object}  detailResponse
// @Failure      422              {object}  map[string]any
// @Router       /service-request [post]
func (h *ServiceRequestHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createServiceRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.UserID != id.UserID {
		return domain.ErrForbidden
	}

	res, err := h.service.Create(c.Request().Context(), ports.CreateRequestInput{
		UserID:         req.UserID,
		UserName:       req.UserName,
		UserEmail:      req.UserEmail,
		ServiceType:    domain.ServiceType(req.ServiceType),
		Requirements:   req.Requirements,
		Cost:           req.Cost,
		CreatedAt:      req.CreatedAt,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, res.Request)
	}
	metrics.ServiceRequestsCreatedTotal.WithLabelValues(string(res.Request.ServiceType)).Inc()
	return c.JSON(http.StatusCreated, res.Request)
}

// ListPending handles GET /service-requests/pending.
//
// @Summary      List pending service requests
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pendingResponse
// @Failure      401  {object}  detailResponse
// @Failure      403  {object}  detailResponse
// @Router       /service-requests/pending [get]
func (h *ServiceRequestHandler) ListPending(c echo.Context) error {
	reqs, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	if reqs == nil {
		reqs = []*domain.ServiceRequest{}
	}
	metrics.PendingRequests.Set(float64(len(reqs)))
	return c.JSON(http.StatusOK, pendingResponse{Requests: reqs})
}

// Decide handles PATCH /service-request/:id/:action.
//
// @Summary      Approve or reject a pending request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string         true  "Request id"
// @Param        action  path      string         true  "approve or reject"
// @Param        body    body      decideRequest  true  "Acting caregiver"
// @Success      200     {object}  decisionResponse
// @Failure      400     {object}  detailResponse
// @Failure      403     {object}  detailResponse
// @Failure      404     {object}  detailResponse
// @Failure      409     {object}  detailResponse
// @Router       /service-request/{id}/{action} [patch]
func (h *ServiceRequestHandler) Decide(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	decision := domain.Decision(c.Param("action"))
	if _, ok := decision.Status(); !ok {
		return domain.ErrInvalidDecision
	}

	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.CaregiverID != id.UserID {
		return domain.ErrForbidden
	}

	updated, err := h.service.Decide(c.Request().Context(), ports.DecideInput{
		RequestID: c.Param("id"),
		Decision:  decision,
		Caregiver: domain.Caregiver{
			ID:    req.CaregiverID,
			Name:  req.CaregiverName,
			Email: req.CaregiverEmail,
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyDecided) {
			metrics.DecisionsTotal.WithLabelValues(string(decision), "conflict").Inc()
		}
		return err
	}

	metrics.DecisionsTotal.WithLabelValues(string(decision), "applied").Inc()
	return c.JSON(http.StatusOK, decisionResponse{Request: updated})
}
