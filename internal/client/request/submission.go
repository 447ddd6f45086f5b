// Package request drives the service request lifecycle from the client:
// submitting a request, keeping the caregiver's pending view and acting on
// pending requests.
package request

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/auth"
	"github.com/eldercare/careconnect/internal/client/careapi"
	"github.com/eldercare/careconnect/internal/core/domain"
)

const (
	MsgSubmitted     = "Service request submitted successfully! A caregiver will review your request soon."
	MsgSubmitFailed  = "Failed to submit request. Please try again."
	MsgSubmitOffline = "Failed to submit request. Please check your connection and try again."
)

// fieldMessages are shown for a failed field, whatever rule failed.
var fieldMessages = map[string]string{
	"serviceType":  "Please select a service.",
	"requirements": "Please describe your requirements.",
	"cost":         "Please enter a valid cost amount.",
}

// Identity yields the signed-in user.
type Identity interface {
	User() *domain.User
}

// Creator submits a request to the backend.
type Creator interface {
	CreateRequest(ctx context.Context, req careapi.NewRequest, idempotencyKey string) (*domain.ServiceRequest, error)
}

// Form is the raw user input, exactly as typed.
type Form struct {
	ServiceType  string
	Requirements string
	Cost         string

	// key is the idempotency key of the last unconfirmed attempt and keyFor
	// the input it was sent with. A resend of the same input reuses it.
	key    string
	keyFor [3]string
}

func (f *Form) idempotencyKey(newKey func() string) string {
	input := [3]string{f.ServiceType, f.Requirements, f.Cost}
	if f.key == "" || f.keyFor != input {
		f.key, f.keyFor = newKey(), input
	}
	return f.key
}

type formFields struct {
	ServiceType  string  `json:"serviceType"  validate:"required,oneof=medical personal household companionship transportation medication"`
	Requirements string  `json:"requirements" validate:"required"`
	Cost         float64 `json:"cost"         validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// Validate checks every field independently and reports all failures at
// once. A nil result means the form can be sent.
func (f Form) Validate() *careapi.ValidationError {
	fields := formFields{
		ServiceType:  strings.TrimSpace(f.ServiceType),
		Requirements: strings.TrimSpace(f.Requirements),
	}
	costOK := false
	if c, err := strconv.ParseFloat(strings.TrimSpace(f.Cost), 64); err == nil && !math.IsNaN(c) && !math.IsInf(c, 0) {
		fields.Cost = c
		costOK = true
	}

	failed := map[string]bool{}
	if !costOK {
		failed["cost"] = true
	}
	var ve validator.ValidationErrors
	if err := validate.Struct(fields); errors.As(err, &ve) {
		for _, fe := range ve {
			failed[fe.Field()] = true
		}
	}
	if len(failed) == 0 {
		return nil
	}

	out := &careapi.ValidationError{}
	for _, field := range []string{"serviceType", "requirements", "cost"} {
		if failed[field] {
			out.Problems = append(out.Problems, careapi.Problem{Field: field, Msg: fieldMessages[field]})
		}
	}
	return out
}

// Outcome is what the user is told after a submission attempt.
type Outcome struct {
	Request *domain.ServiceRequest
	Message string
}

type Submitter struct {
	api      Creator
	identity Identity
	log      zerolog.Logger
	now      func() time.Time
	newKey   func() string
}

func NewSubmitter(api Creator, identity Identity, log zerolog.Logger) *Submitter {
	return &Submitter{
		api:      api,
		identity: identity,
		log:      log,
		now:      time.Now,
		newKey:   uuid.NewString,
	}
}

// Submit validates form and sends it. On success the form is cleared. The
// returned Outcome always carries a message fit for display, including when
// err is non-nil. There is no automatic retry; a manual resend of unchanged
// input carries the same idempotency key, so a request that reached the
// server before the connection dropped is not created twice.
func (s *Submitter) Submit(ctx context.Context, form *Form) (Outcome, error) {
	if verr := form.Validate(); verr != nil {
		return Outcome{Message: verr.Error()}, verr
	}
	user := s.identity.User()
	if user == nil {
		return Outcome{Message: MsgSubmitFailed}, auth.ErrAnonymous
	}

	cost, _ := strconv.ParseFloat(strings.TrimSpace(form.Cost), 64)
	req := careapi.NewRequest{
		UserID:       user.ID,
		UserName:     user.Name,
		UserEmail:    user.Email,
		ServiceType:  domain.ServiceType(strings.TrimSpace(form.ServiceType)),
		Requirements: form.Requirements,
		Cost:         cost,
		Status:       string(domain.StatusPending),
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}

	created, err := s.api.CreateRequest(ctx, req, form.idempotencyKey(s.newKey))
	if err != nil {
		s.log.Warn().Err(err).Str("service_type", string(req.ServiceType)).Msg("submit failed")
		return Outcome{Message: submitFailureMessage(err)}, err
	}

	*form = Form{}
	s.log.Info().Str("request_id", created.ID).Msg("request submitted")
	return Outcome{Request: created, Message: MsgSubmitted}, nil
}

func submitFailureMessage(err error) string {
	var te *careapi.TransportError
	if errors.As(err, &te) {
		return MsgSubmitOffline
	}
	var ae *careapi.APIError
	if errors.As(err, &ae) && ae.Detail != "" {
		return ae.Detail
	}
	var ce *careapi.ConflictError
	if errors.As(err, &ce) && ce.Detail != "" {
		return ce.Detail
	}
	return MsgSubmitFailed
}
