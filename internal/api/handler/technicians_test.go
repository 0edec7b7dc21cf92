package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

type mockTechStore struct {
	createFn func(tech *models.Technician) error
	listFn   func() ([]*models.Technician, error)
	deleteFn func(id uuid.UUID) error
}

func (m *mockTechStore) CreateTechnician(_ context.Context, tech *models.Technician) error {
	return m.createFn(tech)
}
func (m *mockTechStore) ListTechnicians(_ context.Context) ([]*models.Technician, error) {
	return m.listFn()
}
func (m *mockTechStore) DeleteTechnician(_ context.Context, id uuid.UUID) error {
	return m.deleteFn(id)
}

func TestCreateTechnicianHandler_Success(t *testing.T) {
	var created *models.Technician
	mock := &mockTechStore{createFn: func(tech *models.Technician) error {
		created = tech
		return nil
	}}

	h := NewCreateTechnicianHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/technicians", map[string]any{
		"code": "T-42",
		"name": "Jonas Weiss",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil || created.Code != "T-42" || created.Name != "Jonas Weiss" {
		t.Errorf("store did not receive the technician: %+v", created)
	}
}

func TestCreateTechnicianHandler_MissingCode(t *testing.T) {
	h := NewCreateTechnicianHandler(&mockTechStore{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/technicians", map[string]any{
		"name": "Jonas Weiss",
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != "MISSING_FIELD" {
		t.Errorf("expected MISSING_FIELD, got %s", code)
	}
}

func TestCreateTechnicianHandler_DuplicateCode(t *testing.T) {
	mock := &mockTechStore{createFn: func(_ *models.Technician) error {
		return store.ErrDuplicateKey
	}}

	h := NewCreateTechnicianHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/technicians", map[string]any{
		"code": "T-42",
		"name": "Jonas Weiss",
	}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestListTechniciansHandler(t *testing.T) {
	mock := &mockTechStore{listFn: func() ([]*models.Technician, error) {
		return []*models.Technician{{ID: uuid.New(), Code: "T-1", Name: "A"}}, nil
	}}

	h := NewListTechniciansHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/technicians", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDeleteTechnicianHandler_Success(t *testing.T) {
	id := uuid.New()
	var gotID uuid.UUID
	mock := &mockTechStore{deleteFn: func(id uuid.UUID) error {
		gotID = id
		return nil
	}}

	h := NewDeleteTechnicianHandler(mock)
	rec := httptest.NewRecorder()
	r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/technicians/"+id.String(), nil), "techID", id.String())
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotID != id {
		t.Errorf("expected %s, got %s", id, gotID)
	}
}

func TestDeleteTechnicianHandler_ReferencedConflict(t *testing.T) {
	mock := &mockTechStore{deleteFn: func(_ uuid.UUID) error {
		return store.ErrConflict
	}}

	h := NewDeleteTechnicianHandler(mock)
	rec := httptest.NewRecorder()
	id := uuid.NewString()
	r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/technicians/"+id, nil), "techID", id)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != "CONFLICT" {
		t.Errorf("expected CONFLICT, got %s", code)
	}
}

func TestDeleteTechnicianHandler_NotFound(t *testing.T) {
	mock := &mockTechStore{deleteFn: func(_ uuid.UUID) error {
		return store.ErrNotFound
	}}

	h := NewDeleteTechnicianHandler(mock)
	rec := httptest.NewRecorder()
	id := uuid.NewString()
	r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/technicians/"+id, nil), "techID", id)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
