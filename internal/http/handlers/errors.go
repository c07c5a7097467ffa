// HTTP-layer error codes and the translation from service errors to HTTP
// responses. Codes are lowercase snake_case and stable; clients branch on
// them rather than on message text.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shift-engine/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidation      = "validation_failed"
	ErrCodeIneligible      = "worker_ineligible"
	ErrCodeCapacity        = "capacity_exceeded"
	ErrCodeStateTransition = "illegal_transition"
)

// failFromService maps a service-layer error onto the HTTP envelope. The
// message comes straight from the error, which is written to be shown to a
// user verbatim ("worker w1 already has a shift from 15:00 to 23:00").
func failFromService(c *gin.Context, err error) {
	var (
		ve *services.ValidationError
		ie *services.IneligibleWorkerError
		ce *services.ConflictError
		pe *services.CapacityError
		se *services.StateTransitionError
	)
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, ve.Error())
	case errors.As(err, &ie):
		fail(c, http.StatusConflict, ErrCodeIneligible, ie.Error())
	case errors.As(err, &ce):
		fail(c, http.StatusConflict, ErrCodeConflict, ce.Error())
	case errors.As(err, &pe):
		fail(c, http.StatusConflict, ErrCodeCapacity, pe.Error())
	case errors.As(err, &se):
		fail(c, http.StatusConflict, ErrCodeStateTransition, se.Error())
	case errors.Is(err, services.ErrUnauthorized):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrShiftNotFound),
		errors.Is(err, services.ErrWorkerNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "unexpected error")
	}
}
