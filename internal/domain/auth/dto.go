package auth

import (
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
)

// LoginRequest is either an admin account (username + shared password) or an
// employee (full name + employee code as password).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Username = strings.TrimSpace(r.Username)
	if validator.IsEmpty(r.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "username",
			Message: "username is required",
		})
	}
	if len(r.Username) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "username",
			Message: "username must not exceed 255 characters",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}
	if len(r.Password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
	Username             string `json:"username"`
	Role                 string `json:"role"`
	EmployeeID           string `json:"employee_id,omitempty"`
}

// MeResponse describes the caller of the current access token.
type MeResponse struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id,omitempty"`
}
