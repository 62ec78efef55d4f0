package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/handler"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/auth"
)

type menuFixture struct {
	store   *memAccessStore
	binding *memBinding
	router  *chi.Mux
}

func setupMenu(t *testing.T) *menuFixture {
	t.Helper()

	store := newMemAccessStore()
	binding := newMemBinding()
	gate := access.NewGate(access.NewResolver(store))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.With(middleware.OptionalSession(binding)).
		Get("/menu", handler.NewMenuHandler(gate, handler.DefaultMenu).ServeHTTP)

	return &menuFixture{store: store, binding: binding, router: r}
}

func labelsFrom(t *testing.T, data any) []string {
	t.Helper()
	items, ok := data.([]any)
	require.True(t, ok, "expected list data, got %T", data)
	labels := make([]string, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		require.True(t, ok)
		labels = append(labels, item["label"].(string))
	}
	return labels
}

func TestMenu_Anonymous(t *testing.T) {
	f := setupMenu(t)

	rec := doJSON(t, f.router, http.MethodGet, "/menu", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeBody(t, rec)
	assert.Equal(t, []string{"Home"}, labelsFrom(t, env.Data))
}

func TestMenu_MemberSeesGrantedItems(t *testing.T) {
	f := setupMenu(t)
	identity := &auth.Identity{UserID: uuid.New(), PhoneNumber: "+15551234567"}
	f.store.grantDirect(identity.UserID, access.Permission{Resource: "post", Action: "view"})

	token, err := f.binding.Bind(context.Background(), identity)
	require.NoError(t, err)

	rec := doJSON(t, f.router, http.MethodGet, "/menu", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeBody(t, rec)
	assert.Equal(t, []string{"Home", "Posts"}, labelsFrom(t, env.Data))
}

func TestMenu_SuperuserSeesEverything(t *testing.T) {
	f := setupMenu(t)
	for _, pair := range [][2]string{{"post", "view"}, {"post", "add"}, {"users", "view"}, {"groups", "view"}} {
		f.store.addCatalog(pair[0], pair[1])
	}
	identity := &auth.Identity{UserID: uuid.New(), PhoneNumber: "+15550000001", IsSuperuser: true}

	token, err := f.binding.Bind(context.Background(), identity)
	require.NoError(t, err)

	rec := doJSON(t, f.router, http.MethodGet, "/menu", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeBody(t, rec)
	assert.Equal(t, []string{"Home", "Posts", "New Post", "Users", "Groups"}, labelsFrom(t, env.Data))
}

func TestMenu_InvalidTokenFallsBackToAnonymous(t *testing.T) {
	f := setupMenu(t)

	rec := doJSON(t, f.router, http.MethodGet, "/menu", "forged-token", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeBody(t, rec)
	assert.Equal(t, []string{"Home"}, labelsFrom(t, env.Data))
}
