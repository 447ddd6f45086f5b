// Package account covers signup and sign-in from the client.
package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/eldercare/careconnect/internal/client/careapi"
	"github.com/eldercare/careconnect/internal/core/domain"
)

const (
	minAge = 18
	maxAge = 120
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordCharset = regexp.MustCompile(`^[a-zA-Z\d@$!%*?&]{8,}$`)
	hasLower        = regexp.MustCompile(`[a-z]`)
	hasUpper        = regexp.MustCompile(`[A-Z]`)
	hasDigit        = regexp.MustCompile(`\d`)
)

// SignupForm is the registration input as typed.
type SignupForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	DateOfBirth     string // YYYY-MM-DD
	Role            domain.Role
}

// Validate applies the registration rules as of now and returns every
// failure, or nil.
func (f SignupForm) Validate(now time.Time) *careapi.ValidationError {
	out := &careapi.ValidationError{}
	add := func(field, msg string) {
		out.Problems = append(out.Problems, careapi.Problem{Field: field, Msg: msg})
	}

	switch name := strings.TrimSpace(f.Name); {
	case f.Name == "":
		add("name", "Name is required")
	case len([]rune(name)) < 2:
		add("name", "Name must be at least 2 characters")
	}

	switch {
	case f.Email == "":
		add("email", "Email is required")
	case !emailPattern.MatchString(f.Email):
		add("email", "Please enter a valid email address")
	}

	switch {
	case f.Password == "":
		add("password", "Password is required")
	case !strongPassword(f.Password):
		add("password", "Password must be at least 8 characters with uppercase, lowercase, and number")
	}

	switch {
	case f.ConfirmPassword == "":
		add("confirmPassword", "Please confirm your password")
	case f.ConfirmPassword != f.Password:
		add("confirmPassword", "Passwords do not match")
	}

	if msg := checkBirthDate(f.DateOfBirth, now); msg != "" {
		add("dateOfBirth", msg)
	}

	if !f.Role.Valid() {
		add("role", "Please select a role")
	}

	if len(out.Problems) == 0 {
		return nil
	}
	return out
}

func strongPassword(p string) bool {
	return passwordCharset.MatchString(p) &&
		hasLower.MatchString(p) &&
		hasUpper.MatchString(p) &&
		hasDigit.MatchString(p)
}

// checkBirthDate compares calendar years only, so someone turning 18 later
// this year already passes.
func checkBirthDate(dob string, now time.Time) string {
	if dob == "" {
		return "Date of birth is required"
	}
	born, err := time.Parse(time.DateOnly, dob)
	if err != nil {
		return "Please enter a valid date of birth"
	}
	age := now.Year() - born.Year()
	if age < minAge {
		return "You must be at least 18 years old"
	}
	if age > maxAge {
		return "Please enter a valid date of birth"
	}
	return ""
}
