package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/handler"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/auth"
)

type authFixture struct {
	users   *memUserRepo
	store   *memAccessStore
	binding *memBinding
	service *auth.Service
	router  *chi.Mux
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()

	users := newMemUserRepo()
	store := newMemAccessStore()
	binding := newMemBinding()
	service := auth.NewService(users, plainHasher{})
	resolver := access.NewResolver(store)

	h := handler.NewAuthHandler(service, binding, resolver)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Post("/auth/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(binding))
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
	})

	return &authFixture{users: users, store: store, binding: binding, service: service, router: r}
}

func (f *authFixture) registerUser(t *testing.T, phoneNumber, password string) *auth.User {
	t.Helper()
	u, err := f.service.Register(context.Background(), phoneNumber, password, "Ada", "Lovelace", false)
	require.NoError(t, err)
	return u
}

func TestLogin_Success(t *testing.T) {
	f := setupAuth(t)
	f.registerUser(t, "+15551234567", "Secret123")

	rec := doJSON(t, f.router, http.MethodPost, "/auth/login", "", map[string]string{
		"phoneNumber": "+15551234567",
		"password":    "Secret123",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeBody(t, rec))
	assert.NotEmpty(t, data["token"])

	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+15551234567", user["phoneNumber"])
	assert.Equal(t, "Ada", user["firstName"])
}

func TestLogin_FormattedPhoneMatchesCanonicalUser(t *testing.T) {
	f := setupAuth(t)
	f.registerUser(t, "+15551234567", "Secret123")

	rec := doJSON(t, f.router, http.MethodPost, "/auth/login", "", map[string]string{
		"phoneNumber": "+1 (555) 123-4567",
		"password":    "Secret123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := setupAuth(t)
	f.registerUser(t, "+15551234567", "Secret123")

	inactive := f.registerUser(t, "+15557654321", "Secret123")
	require.NoError(t, f.users.SetActive(context.Background(), inactive.ID, false))

	attempts := []struct {
		name        string
		phoneNumber string
		password    string
	}{
		{name: "wrong password", phoneNumber: "+15551234567", password: "WrongPass1"},
		{name: "unknown user", phoneNumber: "+15550000000", password: "Secret123"},
		{name: "inactive user with correct password", phoneNumber: "+15557654321", password: "Secret123"},
		{name: "malformed phone", phoneNumber: "!!!", password: "Secret123"},
	}

	var bodies []string
	for _, attempt := range attempts {
		t.Run(attempt.name, func(t *testing.T) {
			rec := doJSON(t, f.router, http.MethodPost, "/auth/login", "", map[string]string{
				"phoneNumber": attempt.phoneNumber,
				"password":    attempt.password,
			})

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			env := decodeBody(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, "AUTHENTICATION_FAILED", env.Error.Code)
			bodies = append(bodies, env.Error.Message)
		})
	}

	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
}

func TestLogin_MissingFields(t *testing.T) {
	f := setupAuth(t)

	rec := doJSON(t, f.router, http.MethodPost, "/auth/login", "", map[string]string{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeBody(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestLogin_InvalidJSON(t *testing.T) {
	f := setupAuth(t)

	rec := doJSON(t, f.router, http.MethodPost, "/auth/login", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeBody(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_JSON", env.Error.Code)
}

func login(t *testing.T, f *authFixture, phoneNumber, password string) string {
	t.Helper()
	rec := doJSON(t, f.router, http.MethodPost, "/auth/login", "", map[string]string{
		"phoneNumber": phoneNumber,
		"password":    password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeBody(t, rec))
	token, ok := data["token"].(string)
	require.True(t, ok)
	return token
}

func TestLogout_RevokesSession(t *testing.T) {
	f := setupAuth(t)
	f.registerUser(t, "+15551234567", "Secret123")
	token := login(t, f, "+15551234567", "Secret123")

	rec := doJSON(t, f.router, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the replayed token no longer resolves
	rec = doJSON(t, f.router, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_WithoutSession(t *testing.T) {
	f := setupAuth(t)

	rec := doJSON(t, f.router, http.MethodPost, "/auth/logout", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_ReturnsIdentityAndPermissions(t *testing.T) {
	f := setupAuth(t)
	u := f.registerUser(t, "+15551234567", "Secret123")
	f.store.grantDirect(u.ID,
		access.Permission{Resource: "post", Action: "view"},
		access.Permission{Resource: "post", Action: "add"},
	)
	token := login(t, f, "+15551234567", "Secret123")

	rec := doJSON(t, f.router, http.MethodGet, "/auth/me", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeBody(t, rec))

	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, u.ID.String(), user["userId"])

	perms, ok := data["permissions"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"post:add", "post:view"}, perms)
}

func TestMe_NoPermissionsIsEmptyList(t *testing.T) {
	f := setupAuth(t)
	f.registerUser(t, "+15551234567", "Secret123")
	token := login(t, f, "+15551234567", "Secret123")

	rec := doJSON(t, f.router, http.MethodGet, "/auth/me", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeBody(t, rec))

	perms, ok := data["permissions"].([]any)
	require.True(t, ok)
	assert.Empty(t, perms)
}
