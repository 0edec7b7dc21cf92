package handler

import (
	"errors"
	"net/http"

	"github.com/kiranshivaraju/shoptrack/internal/api/response"
	"github.com/kiranshivaraju/shoptrack/internal/store"
	"github.com/kiranshivaraju/shoptrack/internal/workflow"
)

// writeStoreError maps store and workflow errors onto the wire taxonomy.
// Unknown errors stay opaque.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND",
			"The requested resource does not exist", nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, "CONFLICT",
			"A resource with the same identifier already exists", nil)
	case errors.Is(err, store.ErrConflict):
		response.Error(w, http.StatusConflict, "CONFLICT",
			"The resource is referenced by other records", nil)
	case errors.Is(err, workflow.ErrInvalidTransition):
		response.Error(w, http.StatusBadRequest, "INVALID_TRANSITION",
			err.Error(), nil)
	case errors.Is(err, workflow.ErrMissingField):
		response.Error(w, http.StatusBadRequest, "MISSING_FIELD",
			err.Error(), nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
