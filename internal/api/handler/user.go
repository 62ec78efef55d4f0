package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/api/response"
	"github.com/gatehouse/gatehouse/internal/api/validation"
	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/phone"
)

type createUserRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	IsSuperuser bool   `json:"isSuperuser"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	IsActive  *bool   `json:"isActive"`
}

type userResponse struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	IsActive    bool   `json:"isActive"`
	IsSuperuser bool   `json:"isSuperuser"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// UserHandler handles user provisioning and administration endpoints.
type UserHandler struct {
	authService *auth.Service
	userRepo    auth.UserRepository
	store       access.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *auth.Service, userRepo auth.UserRepository, store access.Store) *UserHandler {
	return &UserHandler{
		authService: authService,
		userRepo:    userRepo,
		store:       store,
	}
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.authService.Register(r.Context(), req.PhoneNumber, req.Password, req.FirstName, req.LastName, req.IsSuperuser)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicatePhone):
			response.Err(w, http.StatusConflict, "DUPLICATE_PHONE", "A user with this phone number already exists", requestID)
		case errors.Is(err, phone.ErrInvalidFormat), errors.Is(err, auth.ErrWeakPassword):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID)
		default:
			slog.Error("create user failed", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(u), requestID)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.userRepo.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}

// GetByID handles GET /users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}

	u, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("get user failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Update handles PATCH /users/{id}: names and the active flag. Deactivation
// is the only removal path; there is no DELETE /users route.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateUserRequest(validation.UpdateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	current, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("get user failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user", requestID)
		return
	}

	if req.FirstName != nil || req.LastName != nil {
		firstName := current.FirstName
		lastName := current.LastName
		if req.FirstName != nil {
			firstName = *req.FirstName
		}
		if req.LastName != nil {
			lastName = *req.LastName
		}
		if err := h.userRepo.UpdateNames(r.Context(), id, firstName, lastName); err != nil {
			slog.Error("update user names failed", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
			return
		}
	}

	if req.IsActive != nil {
		if err := h.userRepo.SetActive(r.Context(), id, *req.IsActive); err != nil {
			slog.Error("set user active failed", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
			return
		}
	}

	updated, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		slog.Error("get user failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(updated), requestID)
}

// Grant handles POST /users/{id}/permissions/{permissionId}: a direct grant
// outside any group.
func (h *UserHandler) Grant(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, true)
}

// Revoke handles DELETE /users/{id}/permissions/{permissionId}.
func (h *UserHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, false)
}

func (h *UserHandler) changeGrant(w http.ResponseWriter, r *http.Request, grant bool) {
	requestID := middleware.GetRequestID(r.Context())

	userID, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}
	permissionID, ok := parseUUIDParam(w, r, "permissionId", requestID)
	if !ok {
		return
	}

	if _, err := h.userRepo.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("get user failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user", requestID)
		return
	}

	if _, err := h.store.GetPermissionByID(r.Context(), permissionID); err != nil {
		if errors.Is(err, access.ErrPermissionNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Permission not found", requestID)
			return
		}
		slog.Error("get permission failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch permission", requestID)
		return
	}

	var err error
	if grant {
		err = h.store.GrantToUser(r.Context(), userID, permissionID)
	} else {
		err = h.store.RevokeFromUser(r.Context(), userID, permissionID)
	}
	if err != nil {
		slog.Error("change direct grant failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update grants", requestID)
		return
	}

	response.NoContent(w)
}

// parseUUIDParam reads a UUID path parameter, writing a 400 on failure.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", name+" must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}
