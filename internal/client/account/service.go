package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/careapi"
	"github.com/eldercare/careconnect/internal/client/session"
	"github.com/eldercare/careconnect/internal/core/domain"
)

const (
	MsgSignupFailed  = "Registration failed. Please try again."
	MsgSignupOffline = "Network error. Please check your connection and try again."
	MsgLoginFailed   = "Login failed. Please try again."
)

// API is the part of the backend the account flows use.
type API interface {
	Signup(ctx context.Context, req careapi.SignupRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*careapi.LoginResult, error)
}

// Identity is the identity cache that a successful login updates.
type Identity interface {
	Login(ctx context.Context, sess session.Session, remember bool) error
	Logout(ctx context.Context) error
}

type Service struct {
	api      API
	identity Identity
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(api API, identity Identity, log zerolog.Logger) *Service {
	return &Service{api: api, identity: identity, log: log, now: time.Now}
}

// Signup validates form locally and registers the account. It does not sign
// the user in.
func (s *Service) Signup(ctx context.Context, form SignupForm) (*domain.User, error) {
	if verr := form.Validate(s.now()); verr != nil {
		return nil, verr
	}
	user, err := s.api.Signup(ctx, careapi.SignupRequest{
		Name:        strings.TrimSpace(form.Name),
		Email:       form.Email,
		Password:    form.Password,
		DateOfBirth: form.DateOfBirth,
		Role:        form.Role,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("signup failed")
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("account created")
	return user, nil
}

// Login authenticates and stores the session, in the long-lived tier when
// remember is set.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (*domain.User, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.identity.Login(ctx, session.Session{User: res.User, Token: res.Token}, remember); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.identity.Logout(ctx)
}

// Message renders an account error for display. Conflicts keep their sign-in
// hint on a second line.
func Message(err error, fallback string) string {
	var (
		verr *careapi.ValidationError
		ce   *careapi.ConflictError
		ae   *careapi.APIError
		te   *careapi.TransportError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &ce):
		detail := ce.Detail
		if detail == "" {
			detail = "Email already registered."
		}
		return detail + "\n" + ce.Hint
	case errors.As(err, &te):
		return MsgSignupOffline
	case errors.As(err, &ae) && ae.Detail != "":
		return ae.Detail
	}
	return fallback
}
