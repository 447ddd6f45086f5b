package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/eldercare/careconnect/internal/core/domain"
	"github.com/eldercare/careconnect/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailRegistered
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "u-" + user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func signupInput(name, email, password string, role domain.Role) ports.SignupInput {
	return ports.SignupInput{Name: name, Email: email, Password: password, DateOfBirth: "1950-04-02", Role: role}
}

func TestAuthService_Signup_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	user, err := svc.Signup(context.Background(), signupInput(" Alice ", "Alice@Example.com", "Passw0rd", domain.RolePatient))
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.PasswordHash == "Passw0rd" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Passw0rd")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Name != "Alice" || user.Email != "alice@example.com" {
		t.Fatalf("expected normalised name/email, got %q %q", user.Name, user.Email)
	}
	if user.DateOfBirth != "1950-04-02" {
		t.Fatalf("unexpected date of birth: %s", user.DateOfBirth)
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	if _, err := svc.Signup(context.Background(), signupInput("", "a@example.com", "Passw0rd", domain.RolePatient)); err != domain.ErrInvalidSignup {
		t.Fatalf("expected ErrInvalidSignup, got %v", err)
	}
	if _, err := svc.Signup(context.Background(), signupInput("Bob", "b@example.com", "Passw0rd", "admin")); err != domain.ErrInvalidSignup {
		t.Fatalf("expected ErrInvalidSignup for bad role, got %v", err)
	}
}

func TestAuthService_Signup_EmailRegistered(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	_, _ = svc.Signup(context.Background(), signupInput("Bob", "bob@example.com", "Passw0rd", domain.RoleFamily))
	if _, err := svc.Signup(context.Background(), signupInput("Bobby", "BOB@example.com", "Passw0rd2", domain.RoleFamily)); err != domain.ErrEmailRegistered {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	if _, err := svc.Signup(context.Background(), signupInput("Carol", "carol@example.com", "S3cretPass", domain.RoleCaregiver)); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol@example.com", "S3cretPass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Name != "Carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != string(domain.RoleCaregiver) {
		t.Fatalf("expected role %s, got %v", domain.RoleCaregiver, claims["role"])
	}
	if claims["sub"] != user.ID {
		t.Fatalf("expected sub %s, got %v", user.ID, claims["sub"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	_, _ = svc.Signup(context.Background(), signupInput("Dave", "dave@example.com", "GoodPass1", domain.RolePatient))
	if _, _, err := svc.Login(context.Background(), "dave@example.com", "BadPass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
