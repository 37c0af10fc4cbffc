// Package respond centralizes JSON response writing and the mapping from
// domain errors to HTTP status codes. Handlers return domain sentinel
// errors from stores and the core packages; Error picks the status so the
// mapping lives in one place.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	ngostore "github.com/volunteerhub/volunteerhub/internal/app/store/ngos"
	projectstore "github.com/volunteerhub/volunteerhub/internal/app/store/projects"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/inputval"
	"github.com/volunteerhub/volunteerhub/internal/domain/roster"
	"github.com/volunteerhub/volunteerhub/internal/domain/tasklife"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrValidation marks malformed or out-of-range input. Wrap it with
// fmt.Errorf("%w: ...") to add detail. It is the inputval sentinel so
// stores can wrap it without importing this package.
var ErrValidation = inputval.ErrInvalid

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Fail writes an error envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// Error maps err to an HTTP status and writes the error envelope.
// Unrecognized errors become 500 and are logged; everything else carries
// its message to the client.
//
//	validation                  → 400
//	not found (incl. absent
//	  milestone/deliverable)    → 404
//	conflict (duplicate,
//	  capacity, duplicate app)  → 409
//	state (bad transition,
//	  zero deliverables)        → 422
func Error(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, mongo.ErrNoDocuments),
		errors.Is(err, roster.ErrNotInRoster),
		errors.Is(err, projectstore.ErrMilestoneIndex),
		errors.Is(err, tasklife.ErrDeliverableIndex):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, roster.ErrDuplicateApplication),
		errors.Is(err, roster.ErrCapacityExceeded),
		errors.Is(err, userstore.ErrEmailTaken),
		errors.Is(err, ngostore.ErrOwnerHasNGO):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, roster.ErrBadStatus),
		errors.Is(err, roster.ErrBadTransition),
		errors.Is(err, ngostore.ErrBadVerificationStatus),
		errors.Is(err, ngostore.ErrBadVerificationTransition),
		errors.Is(err, projectstore.ErrBadProjectStatus),
		errors.Is(err, projectstore.ErrBadProjectTransition),
		errors.Is(err, tasklife.ErrTerminal),
		errors.Is(err, tasklife.ErrNoDeliverables):
		Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		Fail(w, http.StatusInternalServerError, "internal server error")
	}
}
