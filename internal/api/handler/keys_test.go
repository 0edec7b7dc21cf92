package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

type mockKeyStore struct {
	createFn func(key *models.APIKey) error
	listFn   func() ([]*models.APIKey, error)
	revokeFn func(id uuid.UUID) error
}

func (m *mockKeyStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	return m.createFn(key)
}
func (m *mockKeyStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) {
	return m.listFn()
}
func (m *mockKeyStore) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	return m.revokeFn(id)
}

func TestCreateKeyHandler_Success(t *testing.T) {
	var stored *models.APIKey
	mock := &mockKeyStore{createFn: func(key *models.APIKey) error {
		stored = key
		return nil
	}}

	h := NewCreateKeyHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/admin/keys", map[string]any{
		"name":   "floor-tablet",
		"scopes": []string{"read", "write"},
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	rawKey, _ := data["key"].(string)
	if !strings.HasPrefix(rawKey, "st_") {
		t.Fatalf("raw key should carry the st_ prefix, got %q", rawKey)
	}
	if data["key_prefix"] != rawKey[:8] {
		t.Errorf("prefix mismatch: %v vs %s", data["key_prefix"], rawKey[:8])
	}
	// Stored hash must verify against the raw key that was handed out.
	if bcrypt.CompareHashAndPassword([]byte(stored.KeyHash), []byte(rawKey)) != nil {
		t.Error("stored hash does not match the issued key")
	}
}

func TestCreateKeyHandler_DefaultScope(t *testing.T) {
	var stored *models.APIKey
	mock := &mockKeyStore{createFn: func(key *models.APIKey) error {
		stored = key
		return nil
	}}

	h := NewCreateKeyHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/admin/keys", map[string]any{
		"name": "readonly-board",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(stored.Scopes) != 1 || stored.Scopes[0] != "read" {
		t.Errorf("expected default read scope, got %v", stored.Scopes)
	}
}

func TestCreateKeyHandler_MissingName(t *testing.T) {
	h := NewCreateKeyHandler(&mockKeyStore{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/admin/keys", map[string]any{}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != "MISSING_FIELD" {
		t.Errorf("expected MISSING_FIELD, got %s", code)
	}
}

func TestCreateKeyHandler_UnknownScope(t *testing.T) {
	h := NewCreateKeyHandler(&mockKeyStore{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/admin/keys", map[string]any{
		"name":   "x",
		"scopes": []string{"root"},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListKeysHandler(t *testing.T) {
	mock := &mockKeyStore{listFn: func() ([]*models.APIKey, error) {
		return []*models.APIKey{{ID: uuid.New(), Name: "k1"}}, nil
	}}

	h := NewListKeysHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRevokeKeyHandler_Success(t *testing.T) {
	mock := &mockKeyStore{revokeFn: func(_ uuid.UUID) error { return nil }}

	h := NewRevokeKeyHandler(mock)
	rec := httptest.NewRecorder()
	id := uuid.NewString()
	r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/keys/"+id, nil), "keyID", id)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRevokeKeyHandler_NotFound(t *testing.T) {
	mock := &mockKeyStore{revokeFn: func(_ uuid.UUID) error { return store.ErrNotFound }}

	h := NewRevokeKeyHandler(mock)
	rec := httptest.NewRecorder()
	id := uuid.NewString()
	r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/keys/"+id, nil), "keyID", id)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
