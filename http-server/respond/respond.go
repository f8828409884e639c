// Package respond maps ledger errors to HTTP responses.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

const (
	ReasonValidation   = "validation"
	ReasonForbidden    = "forbidden"
	ReasonNotFound     = "not_found"
	ReasonLockStore    = "lock_store_corrupt"
	ReasonPersistence  = "persistence"
	ReasonInconsistent = "aggregation_inconsistency"
	ReasonUnauthorized = "unauthorized"
	ReasonInternal     = "internal"
)

type ErrorResponse struct {
	Accepted *bool    `json:"accepted,omitempty"`
	Error    string   `json:"error"`
	Reason   string   `json:"reason"`
	Problems []string `json:"problems,omitempty"`
}

// Classify returns the status code and reason for err.
func Classify(err error) (int, ErrorResponse) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid request", Reason: ReasonValidation, Problems: verr.Problems}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden", Reason: ReasonForbidden}
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found", Reason: ReasonNotFound}
	case errors.Is(err, storage.ErrLockStoreCorrupt):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "week lock registry is corrupt, contact an administrator", Reason: ReasonLockStore}
	case errors.Is(err, service.ErrAggregationInconsistency):
		return http.StatusInternalServerError, ErrorResponse{Error: "submission not accepted, the cost object index needs a rebuild", Reason: ReasonInconsistent}
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, ErrorResponse{Error: "submission not accepted, storage failure", Reason: ReasonPersistence}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Reason: ReasonInternal}
	}
}

// Error logs err and writes the classified response.
func Error(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error) {
	status, resp := Classify(err)
	write(log, w, r, op, err, status, resp)
}

// Rejected is Error for write requests: the body also says accepted=false.
func Rejected(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error) {
	status, resp := Classify(err)
	accepted := false
	resp.Accepted = &accepted
	write(log, w, r, op, err, status, resp)
}

func Unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, ErrorResponse{Error: "unauthorized", Reason: ReasonUnauthorized})
}

func write(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error, status int, resp ErrorResponse) {
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
	} else {
		log.Info("request rejected", slog.String("op", op), slog.String("reason", resp.Reason), slog.String("error", err.Error()))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
