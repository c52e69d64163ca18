package handlers

import (
	"encoding/json"
	"errors"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

var planningStatus = map[domain.PlanningKind]int{
	domain.KindValidation: http.StatusBadRequest,
	domain.KindInfeasible: http.StatusConflict,
	domain.KindRouting:    http.StatusUnprocessableEntity,
}

// writeServiceError maps service errors to responses. Internal causes are
// logged, never returned to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if pe, ok := domain.AsPlanningError(err); ok {
		status, known := planningStatus[pe.Kind]
		if !known {
			status = http.StatusBadRequest
		}
		writeJSON(w, r, status, map[string]string{"error": pe.Message, "reason": string(pe.Reason)})
		return
	}

	switch {
	case errors.Is(err, domain.ErrTripNotFound),
		errors.Is(err, domain.ErrStopNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		writeError(w, r, http.StatusNotFound, rootMessage(err))
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrZeroDelta),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidNodeRef):
		writeError(w, r, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, domain.ErrTerminalStatus),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNegativeStock):
		writeError(w, r, http.StatusConflict, rootMessage(err))
	case errors.Is(err, domain.ErrTripCreateFailed):
		writeError(w, r, http.StatusInternalServerError, domain.ErrTripCreateFailed.Error())
	default:
		log.Printf("req_id=%s op=%s err=%v", obs.RequestID(r.Context()), op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// rootMessage returns the message of the first known sentinel in err.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrTripNotFound, domain.ErrStopNotFound, domain.ErrProductNotFound,
		domain.ErrInvalidStatus, domain.ErrInvalidFilter, domain.ErrZeroDelta,
		domain.ErrNameRequired, domain.ErrInvalidCoordinates, domain.ErrInvalidWeight,
		domain.ErrInvalidNodeRef, domain.ErrTerminalStatus, domain.ErrInvalidTransition, domain.ErrNegativeStock,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}
