package handler

import (
	"time"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// detailResponse is the error envelope: {"detail": "<message>"}.
type detailResponse struct {
	Detail string `json:"detail"`
}

// --- Auth ---

type signupRequest struct {
	Name        string `json:"name"        validate:"required,min=2"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Role        string `json:"role"        validate:"required,oneof=patient family caregiver"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// --- Service requests ---

type createServiceRequestRequest struct {
	UserID       string    `json:"userId"       validate:"required"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail"    validate:"omitempty,email"`
	ServiceType  string    `json:"serviceType"  validate:"required,oneof=medical personal household companionship transportation medication"`
	Requirements string    `json:"requirements" validate:"required"`
	Cost         float64   `json:"cost"         validate:"gt=0"`
	Status       string    `json:"status"       validate:"omitempty,eq=pending"`
	CreatedAt    time.Time `json:"createdAt"`
}

type decideRequest struct {
	CaregiverID    string `json:"caregiverId"    validate:"required"`
	CaregiverName  string `json:"caregiverName"`
	CaregiverEmail string `json:"caregiverEmail" validate:"omitempty,email"`
}

type pendingResponse struct {
	Requests []*domain.ServiceRequest `json:"requests"`
}

type decisionResponse struct {
	Request *domain.ServiceRequest `json:"request"`
}
