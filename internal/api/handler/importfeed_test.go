package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/shoptrack/internal/store"
)

type mockImporter struct {
	fn func(orders []store.BulkOrder) (int, int, error)
}

func (m *mockImporter) UpsertOrders(_ context.Context, orders []store.BulkOrder) (int, int, error) {
	return m.fn(orders)
}

func TestImportOrdersHandler_Success(t *testing.T) {
	var gotOrders []store.BulkOrder
	mock := &mockImporter{fn: func(orders []store.BulkOrder) (int, int, error) {
		gotOrders = orders
		return 1, 1, nil
	}}

	h := NewImportOrdersHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/jobs/import", map[string]any{
		"orders": []map[string]any{
			{"order_ref": "DBM-1", "customer_name": "Ana"},
			{"order_ref": "DBM-2", "plate": "KX-4821", "created_at": "2024-06-01T08:00:00Z"},
		},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(gotOrders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(gotOrders))
	}
	if gotOrders[1].CreatedAt == nil {
		t.Error("created_at should be coerced to a timestamp")
	}
	data := decodeData(t, rec)
	if int(data["created"].(float64)) != 1 || int(data["updated"].(float64)) != 1 {
		t.Errorf("unexpected counts: %v", data)
	}
}

func TestImportOrdersHandler_RowMissingOrderRef(t *testing.T) {
	called := false
	mock := &mockImporter{fn: func(_ []store.BulkOrder) (int, int, error) {
		called = true
		return 0, 0, nil
	}}

	h := NewImportOrdersHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/jobs/import", map[string]any{
		"orders": []map[string]any{
			{"order_ref": "DBM-1"},
			{"customer_name": "no ref"},
		},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", code)
	}
	if called {
		t.Error("a batch with invalid rows must not reach the store")
	}
}

func TestImportOrdersHandler_BadTimestamp(t *testing.T) {
	h := NewImportOrdersHandler(&mockImporter{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/jobs/import", map[string]any{
		"orders": []map[string]any{
			{"order_ref": "DBM-1", "created_at": "01/06/2024"},
		},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportOrdersHandler_DuplicateRefInBatch(t *testing.T) {
	h := NewImportOrdersHandler(&mockImporter{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/jobs/import", map[string]any{
		"orders": []map[string]any{
			{"order_ref": "DBM-1"},
			{"order_ref": "DBM-1"},
		},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportOrdersHandler_EmptyBatch(t *testing.T) {
	h := NewImportOrdersHandler(&mockImporter{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/jobs/import", map[string]any{
		"orders": []map[string]any{},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != "MISSING_FIELD" {
		t.Errorf("expected MISSING_FIELD, got %s", code)
	}
}
