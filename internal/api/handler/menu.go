package handler

import (
	"net/http"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/api/response"
)

// MenuItem is a navigation entry gated by an optional permission.
type MenuItem struct {
	Label    string
	Path     string
	Required *access.Permission // nil means visible to everyone
}

// DefaultMenu is the navigation served by GET /menu.
var DefaultMenu = []MenuItem{
	{Label: "Home", Path: "/"},
	{Label: "Posts", Path: "/posts", Required: &access.Permission{Resource: "post", Action: "view"}},
	{Label: "New Post", Path: "/posts/new", Required: &access.Permission{Resource: "post", Action: "add"}},
	{Label: "Users", Path: "/admin/users", Required: &access.Permission{Resource: "users", Action: "view"}},
	{Label: "Groups", Path: "/admin/groups", Required: &access.Permission{Resource: "groups", Action: "view"}},
}

type menuItemResponse struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// MenuHandler serves the permission-filtered menu. It is the rendering-layer
// consumer of the gate's silent-false contract: items the caller cannot see
// are omitted, never an error, and anonymous callers get the public items.
type MenuHandler struct {
	gate  *access.Gate
	items []MenuItem
}

// NewMenuHandler creates a MenuHandler over the given items.
func NewMenuHandler(gate *access.Gate, items []MenuItem) *MenuHandler {
	return &MenuHandler{
		gate:  gate,
		items: items,
	}
}

// ServeHTTP handles GET /menu.
func (h *MenuHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	visible := make([]menuItemResponse, 0, len(h.items))
	for _, item := range h.items {
		if item.Required != nil && !h.gate.Check(r.Context(), identity, *item.Required) {
			continue
		}
		visible = append(visible, menuItemResponse{Label: item.Label, Path: item.Path})
	}

	response.Success(w, http.StatusOK, visible, requestID)
}
