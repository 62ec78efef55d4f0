package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
)

// grantStore serves a fixed direct-grant list per user. Unused Store
// methods panic via the embedded nil interface.
type grantStore struct {
	access.Store
	direct map[uuid.UUID][]access.Permission
}

func (s *grantStore) GroupsFor(ctx context.Context, userID uuid.UUID) ([]access.Group, error) {
	return nil, nil
}

func (s *grantStore) DirectPermissionsFor(ctx context.Context, userID uuid.UUID) ([]access.Permission, error) {
	return s.direct[userID], nil
}

func (s *grantStore) ListPermissions(ctx context.Context) ([]access.PermissionRecord, error) {
	return nil, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequirePermission(t *testing.T) {
	viewPosts := access.Permission{Resource: "post", Action: "view"}
	managePosts := access.Permission{Resource: "post", Action: "manage"}

	binding := newFakeBinding()
	store := &grantStore{direct: map[uuid.UUID][]access.Permission{
		binding.identity.UserID: {viewPosts},
	}}
	gate := access.NewGate(access.NewResolver(store))

	t.Run("granted permission passes", func(t *testing.T) {
		handler := middleware.Session(binding)(middleware.RequirePermission(gate, viewPosts)(okHandler()))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing permission is 403", func(t *testing.T) {
		handler := middleware.Session(binding)(middleware.RequirePermission(gate, managePosts)(okHandler()))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous is 401", func(t *testing.T) {
		handler := middleware.OptionalSession(binding)(middleware.RequirePermission(gate, viewPosts)(okHandler()))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireSuperuser(t *testing.T) {
	t.Run("superuser passes", func(t *testing.T) {
		binding := newFakeBinding()
		binding.identity.IsSuperuser = true
		handler := middleware.Session(binding)(middleware.RequireSuperuser()(okHandler()))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("regular user is 403", func(t *testing.T) {
		binding := newFakeBinding()
		handler := middleware.Session(binding)(middleware.RequireSuperuser()(okHandler()))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous is 401", func(t *testing.T) {
		handler := middleware.OptionalSession(newFakeBinding())(middleware.RequireSuperuser()(okHandler()))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
