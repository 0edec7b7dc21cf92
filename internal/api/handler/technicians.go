package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

// TechnicianStore is the slice of the store the technician handlers depend on.
type TechnicianStore interface {
	CreateTechnician(ctx context.Context, tech *models.Technician) error
	ListTechnicians(ctx context.Context) ([]*models.Technician, error)
	DeleteTechnician(ctx context.Context, id uuid.UUID) error
}

// NewListTechniciansHandler returns an http.HandlerFunc for GET /api/v1/technicians.
func NewListTechniciansHandler(s TechnicianStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		techs, err := s.ListTechnicians(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		response.JSON(w, techs)
	}
}

// NewCreateTechnicianHandler returns an http.HandlerFunc for POST /api/v1/technicians.
func NewCreateTechnicianHandler(s TechnicianStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Code == "" {
			response.Error(w, http.StatusBadRequest, "MISSING_FIELD", "code is required", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "MISSING_FIELD", "name is required", nil)
			return
		}

		tech := &models.Technician{
			ID:        uuid.New(),
			Code:      req.Code,
			Name:      req.Name,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.CreateTechnician(r.Context(), tech); err != nil {
			writeStoreError(w, err)
			return
		}

		response.Created(w, tech)
	}
}

// NewDeleteTechnicianHandler returns an http.HandlerFunc for
// DELETE /api/v1/technicians/{techID}. Deleting a technician that jobs still
// reference is a conflict, not a cascade.
func NewDeleteTechnicianHandler(s TechnicianStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "techID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "techID must be a UUID", nil)
			return
		}

		if err := s.DeleteTechnician(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}

		response.NoContent(w)
	}
}
