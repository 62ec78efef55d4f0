package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/response"
	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/session"
)

// plainHasher keeps handler tests fast. Compare is plain string equality.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hash:" + plaintext, nil }

func (plainHasher) Compare(hash, plaintext string) bool { return hash == "hash:"+plaintext }

// memUserRepo is an in-memory auth.UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*auth.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == user.PhoneNumber {
			return auth.ErrDuplicatePhone
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) FindByPhone(ctx context.Context, canonicalPhone string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == canonicalPhone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *memUserRepo) List(ctx context.Context) ([]auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auth.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out, nil
}

func (r *memUserRepo) UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memUserRepo) CountAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

// memBinding is an in-memory session.Binding keyed by random tokens.
type memBinding struct {
	mu       sync.Mutex
	sessions map[string]*auth.Identity
}

func newMemBinding() *memBinding {
	return &memBinding{sessions: make(map[string]*auth.Identity)}
}

func (b *memBinding) Bind(ctx context.Context, identity *auth.Identity) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := uuid.New().String()
	b.sessions[token] = identity
	return token, nil
}

func (b *memBinding) Lookup(ctx context.Context, token string) (*auth.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	identity, ok := b.sessions[token]
	if !ok {
		return nil, session.ErrInvalidToken
	}
	return identity, nil
}

func (b *memBinding) Unbind(ctx context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, token)
	return nil
}

// memAccessStore implements the resolution and catalog reads used by
// handler tests. Writes it does not need panic via the embedded nil
// interface.
type memAccessStore struct {
	access.Store
	mu      sync.Mutex
	catalog []access.PermissionRecord
	direct  map[uuid.UUID][]access.Permission
	groups  map[uuid.UUID][]access.Group
	grants  map[uuid.UUID][]access.Permission
}

func newMemAccessStore() *memAccessStore {
	return &memAccessStore{
		direct: make(map[uuid.UUID][]access.Permission),
		groups: make(map[uuid.UUID][]access.Group),
		grants: make(map[uuid.UUID][]access.Permission),
	}
}

func (s *memAccessStore) addCatalog(resource, action string) access.PermissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := access.PermissionRecord{ID: uuid.New(), Resource: resource, Action: action, CreatedAt: time.Now().UTC()}
	s.catalog = append(s.catalog, rec)
	return rec
}

func (s *memAccessStore) grantDirect(userID uuid.UUID, perms ...access.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.direct[userID] = append(s.direct[userID], perms...)
}

func (s *memAccessStore) GetPermissionByID(ctx context.Context, id uuid.UUID) (*access.PermissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			rec := s.catalog[i]
			return &rec, nil
		}
	}
	return nil, access.ErrPermissionNotFound
}

func (s *memAccessStore) GrantToUser(ctx context.Context, userID, permissionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.catalog {
		if s.catalog[i].ID == permissionID {
			s.direct[userID] = append(s.direct[userID], s.catalog[i].Pair())
			return nil
		}
	}
	return access.ErrPermissionNotFound
}

func (s *memAccessStore) RevokeFromUser(ctx context.Context, userID, permissionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pair access.Permission
	for i := range s.catalog {
		if s.catalog[i].ID == permissionID {
			pair = s.catalog[i].Pair()
		}
	}
	kept := s.direct[userID][:0]
	for _, p := range s.direct[userID] {
		if p != pair {
			kept = append(kept, p)
		}
	}
	s.direct[userID] = kept
	return nil
}

func (s *memAccessStore) ListPermissions(ctx context.Context) ([]access.PermissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]access.PermissionRecord(nil), s.catalog...), nil
}

func (s *memAccessStore) GroupsFor(ctx context.Context, userID uuid.UUID) ([]access.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]access.Group(nil), s.groups[userID]...), nil
}

func (s *memAccessStore) PermissionsForGroup(ctx context.Context, groupID uuid.UUID) ([]access.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]access.Permission(nil), s.grants[groupID]...), nil
}

func (s *memAccessStore) DirectPermissionsFor(ctx context.Context, userID uuid.UUID) ([]access.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]access.Permission(nil), s.direct[userID]...), nil
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, handler http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func dataMap(t *testing.T, env response.Envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", env.Data)
	return m
}
