package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/api/response"
	"github.com/gatehouse/gatehouse/internal/api/validation"
	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/session"
)

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type identityResponse struct {
	UserID      string `json:"userId"`
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	IsSuperuser bool   `json:"isSuperuser"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  identityResponse `json:"user"`
}

type meResponse struct {
	User        identityResponse `json:"user"`
	Permissions []string         `json:"permissions"`
}

func toIdentityResponse(id *auth.Identity) identityResponse {
	return identityResponse{
		UserID:      id.UserID.String(),
		PhoneNumber: id.PhoneNumber,
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		IsSuperuser: id.IsSuperuser,
	}
}

// AuthHandler handles login, logout and identity introspection.
type AuthHandler struct {
	authService *auth.Service
	binding     session.Binding
	resolver    *access.Resolver
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, binding session.Binding, resolver *access.Resolver) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		binding:     binding,
		resolver:    resolver,
	}
}

// Login handles POST /auth/login. Every authentication failure, whatever the
// cause, answers 401 with the same code and message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	identity, err := h.authService.Authenticate(r.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			response.Err(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid phone number or password", requestID)
			return
		}
		slog.Error("authenticate failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
		return
	}

	token, err := h.binding.Bind(r.Context(), identity)
	if err != nil {
		slog.Error("session bind failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session", requestID)
		return
	}

	response.Success(w, http.StatusOK, loginResponse{
		Token: token,
		User:  toIdentityResponse(identity),
	}, requestID)
}

// Logout handles POST /auth/logout. The session named by the presented token
// is unbound; a replayed token fails from then on.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	token := middleware.GetSessionToken(r.Context())
	if err := h.binding.Unbind(r.Context(), token); err != nil {
		slog.Error("session unbind failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to end session", requestID)
		return
	}

	response.NoContent(w)
}

// Me handles GET /auth/me: the caller's identity plus its effective
// permission set, resolved fresh for this request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	set, err := h.resolver.Resolve(r.Context(), identity)
	if err != nil {
		slog.Error("permission resolution failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve permissions", requestID)
		return
	}

	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p.String())
	}
	sort.Strings(perms)

	response.Success(w, http.StatusOK, meResponse{
		User:        toIdentityResponse(identity),
		Permissions: perms,
	}, requestID)
}
