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
	"github.com/gatehouse/gatehouse/internal/auth"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

type groupResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type groupDetailResponse struct {
	groupResponse
	Permissions []string `json:"permissions"`
}

func toGroupResponse(g *access.Group) groupResponse {
	return groupResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GroupHandler handles group administration endpoints.
type GroupHandler struct {
	store    access.Store
	userRepo auth.UserRepository
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(store access.Store, userRepo auth.UserRepository) *GroupHandler {
	return &GroupHandler{
		store:    store,
		userRepo: userRepo,
	}
}

// Create handles POST /groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateGroupRequest(validation.CreateGroupRequest{Name: req.Name})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	g := &access.Group{Name: req.Name}
	if err := h.store.CreateGroup(r.Context(), g); err != nil {
		if errors.Is(err, access.ErrDuplicateGroupName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", "A group with this name already exists", requestID)
			return
		}
		slog.Error("create group failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create group", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toGroupResponse(g), requestID)
}

// List handles GET /groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		slog.Error("list groups failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list groups", requestID)
		return
	}

	out := make([]groupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, toGroupResponse(&groups[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}

// GetByID handles GET /groups/{id}, including the group's permission pairs.
func (h *GroupHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}

	g, err := h.store.GetGroupByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, access.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("get group failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch group", requestID)
		return
	}

	perms, err := h.store.PermissionsForGroup(r.Context(), g.ID)
	if err != nil {
		slog.Error("get group permissions failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch group permissions", requestID)
		return
	}

	out := groupDetailResponse{groupResponse: toGroupResponse(g), Permissions: make([]string, 0, len(perms))}
	for _, p := range perms {
		out.Permissions = append(out.Permissions, p.String())
	}

	response.Success(w, http.StatusOK, out, requestID)
}

// Delete handles DELETE /groups/{id}.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}

	if err := h.store.DeleteGroup(r.Context(), id); err != nil {
		if errors.Is(err, access.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("delete group failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete group", requestID)
		return
	}

	response.NoContent(w)
}

// AttachPermission handles POST /groups/{id}/permissions/{permissionId}.
func (h *GroupHandler) AttachPermission(w http.ResponseWriter, r *http.Request) {
	h.changeAttachment(w, r, true)
}

// DetachPermission handles DELETE /groups/{id}/permissions/{permissionId}.
func (h *GroupHandler) DetachPermission(w http.ResponseWriter, r *http.Request) {
	h.changeAttachment(w, r, false)
}

func (h *GroupHandler) changeAttachment(w http.ResponseWriter, r *http.Request, attach bool) {
	requestID := middleware.GetRequestID(r.Context())

	groupID, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}
	permissionID, ok := parseUUIDParam(w, r, "permissionId", requestID)
	if !ok {
		return
	}

	if _, err := h.store.GetGroupByID(r.Context(), groupID); err != nil {
		if errors.Is(err, access.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("get group failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch group", requestID)
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
	if attach {
		err = h.store.AttachPermission(r.Context(), groupID, permissionID)
	} else {
		err = h.store.DetachPermission(r.Context(), groupID, permissionID)
	}
	if err != nil {
		slog.Error("change group permission failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update group permissions", requestID)
		return
	}

	response.NoContent(w)
}

// AddMember handles POST /groups/{id}/members/{userId}.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, true)
}

// RemoveMember handles DELETE /groups/{id}/members/{userId}.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, false)
}

func (h *GroupHandler) changeMembership(w http.ResponseWriter, r *http.Request, add bool) {
	requestID := middleware.GetRequestID(r.Context())

	groupID, ok := parseUUIDParam(w, r, "id", requestID)
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(w, r, "userId", requestID)
	if !ok {
		return
	}

	if _, err := h.store.GetGroupByID(r.Context(), groupID); err != nil {
		if errors.Is(err, access.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("get group failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch group", requestID)
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

	var err error
	if add {
		err = h.store.AddMember(r.Context(), userID, groupID)
	} else {
		err = h.store.RemoveMember(r.Context(), userID, groupID)
	}
	if err != nil {
		slog.Error("change group membership failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update group membership", requestID)
		return
	}

	response.NoContent(w)
}
