package domain

import "time"

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// validTransitions holds the one-way edges of the request state machine.
// Approved and rejected are terminal.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Decision is a caregiver's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status maps the decision to the terminal status it produces.
func (d Decision) Status() (RequestStatus, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	}
	return "", false
}

// ServiceType names a category of care.
type ServiceType string

const (
	ServiceMedical        ServiceType = "medical"
	ServicePersonal       ServiceType = "personal"
	ServiceHousehold      ServiceType = "household"
	ServiceCompanionship  ServiceType = "companionship"
	ServiceTransportation ServiceType = "transportation"
	ServiceMedication     ServiceType = "medication"
)

// ServiceInfo describes one entry of the service catalogue.
type ServiceInfo struct {
	Type          ServiceType
	Name          string
	SuggestedRate string
}

// Catalogue lists the offered services in display order.
var Catalogue = []ServiceInfo{
	{ServiceMedical, "Medical Care", "$25-40/hr"},
	{ServicePersonal, "Personal Care", "$20-35/hr"},
	{ServiceHousehold, "Household Tasks", "$15-25/hr"},
	{ServiceCompanionship, "Companionship", "$15-30/hr"},
	{ServiceTransportation, "Transportation", "$20-35/hr"},
	{ServiceMedication, "Medication Management", "$30-45/hr"},
}

// Valid reports whether t is part of the catalogue.
func (t ServiceType) Valid() bool {
	for _, s := range Catalogue {
		if s.Type == t {
			return true
		}
	}
	return false
}

// Caregiver identifies who actioned a request.
type Caregiver struct {
	ID    string `json:"caregiverId"`
	Name  string `json:"caregiverName"`
	Email string `json:"caregiverEmail"`
}

// ServiceRequest is the core aggregate: a care-seeker asking for help at a
// given hourly budget. The embedded Caregiver is nil until the request is
// actioned, so its fields only appear in JSON once a decision exists.
type ServiceRequest struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	UserName     string        `json:"userName"`
	UserEmail    string        `json:"userEmail"`
	ServiceType  ServiceType   `json:"serviceType"`
	Requirements string        `json:"requirements"`
	Cost         float64       `json:"cost"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	*Caregiver
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	IdempotencyKey string     `json:"-"`
}

// DecisionEvent is an audit record of a caregiver decision.
type DecisionEvent struct {
	RequestID string
	Decision  Decision
	Status    RequestStatus
	Caregiver Caregiver
	Timestamp time.Time
}
