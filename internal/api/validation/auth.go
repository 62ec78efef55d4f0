package validation

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	PhoneNumber string
	Password    string
}

// ValidateLoginRequest validates the fields of a login request. It only
// checks presence: format problems surface as the same generic
// authentication failure as a wrong password, so nothing is leaked here.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	if req.PhoneNumber == "" {
		errs = append(errs, FieldError{Field: "phoneNumber", Message: "phoneNumber is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}
