package validation

import (
	"strings"

	"github.com/gatehouse/gatehouse/internal/phone"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CreateUserRequest mirrors the fields needed for create user validation.
type CreateUserRequest struct {
	PhoneNumber string
	Password    string
	FirstName   string
	LastName    string
}

// ValidateCreateUserRequest validates the fields of a create user request.
// Returns a slice of field errors; empty slice means valid.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validatePhoneNumber(req.PhoneNumber)...)

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}

	if len(strings.TrimSpace(req.FirstName)) > 150 {
		errs = append(errs, FieldError{Field: "firstName", Message: "firstName must be at most 150 characters"})
	}
	if len(strings.TrimSpace(req.LastName)) > 150 {
		errs = append(errs, FieldError{Field: "lastName", Message: "lastName must be at most 150 characters"})
	}

	return errs
}

// UpdateUserRequest mirrors the fields needed for update user validation.
// Nil pointers mean the field is not being changed.
type UpdateUserRequest struct {
	FirstName *string
	LastName  *string
	IsActive  *bool
}

// ValidateUpdateUserRequest validates the fields of an update user request.
func ValidateUpdateUserRequest(req UpdateUserRequest) []FieldError {
	var errs []FieldError

	if req.FirstName == nil && req.LastName == nil && req.IsActive == nil {
		errs = append(errs, FieldError{Field: "body", Message: "at least one of firstName, lastName, isActive is required"})
		return errs
	}

	if req.FirstName != nil && len(strings.TrimSpace(*req.FirstName)) > 150 {
		errs = append(errs, FieldError{Field: "firstName", Message: "firstName must be at most 150 characters"})
	}
	if req.LastName != nil && len(strings.TrimSpace(*req.LastName)) > 150 {
		errs = append(errs, FieldError{Field: "lastName", Message: "lastName must be at most 150 characters"})
	}

	return errs
}

func validatePhoneNumber(raw string) []FieldError {
	if strings.TrimSpace(raw) == "" {
		return []FieldError{{Field: "phoneNumber", Message: "phoneNumber is required"}}
	}
	if _, err := phone.Canonicalize(raw); err != nil {
		return []FieldError{{Field: "phoneNumber", Message: "phoneNumber must be 9-15 digits with an optional leading +"}}
	}
	return nil
}
