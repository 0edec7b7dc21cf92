package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/internal/metrics"
	"github.com/kiranshivaraju/shoptrack/internal/store"
)

const maxImportRows = 1000

// OrderImporter is the slice of the store the bulk feed handler depends on.
type OrderImporter interface {
	UpsertOrders(ctx context.Context, orders []store.BulkOrder) (created, updated int, err error)
}

// NewImportOrdersHandler returns an http.HandlerFunc for POST /api/v1/jobs/import.
// The feed is validated row by row at the boundary; a batch with any bad row
// is rejected whole, so a retry after fixing the export cannot half-apply.
func NewImportOrdersHandler(s OrderImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Orders []importRow `json:"orders"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if len(req.Orders) == 0 {
			response.Error(w, http.StatusBadRequest, "MISSING_FIELD", "orders is required", nil)
			return
		}
		if len(req.Orders) > maxImportRows {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("batch exceeds %d rows", maxImportRows), nil)
			return
		}

		orders := make([]store.BulkOrder, 0, len(req.Orders))
		var rowErrors []string
		seen := make(map[string]bool, len(req.Orders))
		for i, row := range req.Orders {
			order, err := row.toBulkOrder()
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i, err))
				continue
			}
			if seen[order.OrderRef] {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: duplicate order_ref %q in batch", i, order.OrderRef))
				continue
			}
			seen[order.OrderRef] = true
			orders = append(orders, order)
		}
		if len(rowErrors) > 0 {
			metrics.ImportRows.WithLabelValues("rejected").Add(float64(len(rowErrors)))
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"One or more feed rows are invalid", rowErrors)
			return
		}

		created, updated, err := s.UpsertOrders(r.Context(), orders)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		metrics.ImportRows.WithLabelValues("created").Add(float64(created))
		metrics.ImportRows.WithLabelValues("updated").Add(float64(updated))

		response.JSON(w, map[string]int{
			"created": created,
			"updated": updated,
			"total":   created + updated,
		})
	}
}

type importRow struct {
	OrderRef     string   `json:"order_ref"`
	OrderType    *string  `json:"order_type"`
	CustomerName *string  `json:"customer_name"`
	Plate        *string  `json:"plate"`
	Make         *string  `json:"make"`
	VehicleModel *string  `json:"vehicle_model"`
	VIN          *string  `json:"vin"`
	Advisor      *string  `json:"advisor"`
	Description  *string  `json:"description"`
	TotalAmount  *float64 `json:"total_amount"`
	CreatedAt    *string  `json:"created_at"`
}

func (r importRow) toBulkOrder() (store.BulkOrder, error) {
	if r.OrderRef == "" {
		return store.BulkOrder{}, fmt.Errorf("order_ref is required")
	}
	order := store.BulkOrder{
		OrderRef:     r.OrderRef,
		OrderType:    r.OrderType,
		CustomerName: r.CustomerName,
		Plate:        r.Plate,
		Make:         r.Make,
		VehicleModel: r.VehicleModel,
		VIN:          r.VIN,
		Advisor:      r.Advisor,
		Description:  r.Description,
		TotalAmount:  r.TotalAmount,
	}
	if r.CreatedAt != nil {
		ts, err := time.Parse(time.RFC3339, *r.CreatedAt)
		if err != nil {
			return store.BulkOrder{}, fmt.Errorf("created_at must be a valid RFC3339 timestamp")
		}
		order.CreatedAt = &ts
	}
	return order, nil
}
