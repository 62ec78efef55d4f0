package validation

import "regexp"

var permissionPartRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// CreatePermissionRequest mirrors the fields needed for create permission validation.
type CreatePermissionRequest struct {
	Resource string
	Action   string
}

// ValidateCreatePermissionRequest validates the fields of a create permission request.
func ValidateCreatePermissionRequest(req CreatePermissionRequest) []FieldError {
	var errs []FieldError

	if req.Resource == "" {
		errs = append(errs, FieldError{Field: "resource", Message: "resource is required"})
	} else if !permissionPartRegex.MatchString(req.Resource) {
		errs = append(errs, FieldError{Field: "resource", Message: "resource must be lowercase alphanumeric with underscores, starting with a letter"})
	}

	if req.Action == "" {
		errs = append(errs, FieldError{Field: "action", Message: "action is required"})
	} else if !permissionPartRegex.MatchString(req.Action) {
		errs = append(errs, FieldError{Field: "action", Message: "action must be lowercase alphanumeric with underscores, starting with a letter"})
	}

	return errs
}
