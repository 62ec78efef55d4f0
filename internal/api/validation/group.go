package validation

import "strings"

// CreateGroupRequest mirrors the fields needed for create group validation.
type CreateGroupRequest struct {
	Name string
}

// ValidateCreateGroupRequest validates the fields of a create group request.
func ValidateCreateGroupRequest(req CreateGroupRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 150 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 150 characters"})
	}

	return errs
}
