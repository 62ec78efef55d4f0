package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/api/response"
	"github.com/gatehouse/gatehouse/internal/api/validation"
)

type createPermissionRequest struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type permissionResponse struct {
	ID        string `json:"id"`
	Resource  string `json:"resource"`
	Action    string `json:"action"`
	CreatedAt string `json:"createdAt"`
}

func toPermissionResponse(p *access.PermissionRecord) permissionResponse {
	return permissionResponse{
		ID:        p.ID.String(),
		Resource:  p.Resource,
		Action:    p.Action,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// PermissionHandler handles the permission catalog endpoints.
type PermissionHandler struct {
	store access.Store
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(store access.Store) *PermissionHandler {
	return &PermissionHandler{store: store}
}

// Create handles POST /permissions. Defining a permission also widens the
// superuser's universal set.
func (h *PermissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreatePermissionRequest(validation.CreatePermissionRequest{
		Resource: req.Resource,
		Action:   req.Action,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p := &access.PermissionRecord{Resource: req.Resource, Action: req.Action}
	if err := h.store.CreatePermission(r.Context(), p); err != nil {
		if errors.Is(err, access.ErrDuplicatePermission) {
			response.Err(w, http.StatusConflict, "DUPLICATE_PERMISSION", "This permission already exists", requestID)
			return
		}
		slog.Error("create permission failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create permission", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toPermissionResponse(p), requestID)
}

// List handles GET /permissions.
func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	perms, err := h.store.ListPermissions(r.Context())
	if err != nil {
		slog.Error("list permissions failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list permissions", requestID)
		return
	}

	out := make([]permissionResponse, 0, len(perms))
	for i := range perms {
		out = append(out, toPermissionResponse(&perms[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}
