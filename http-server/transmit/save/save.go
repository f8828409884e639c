package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/bigchunguss42069/sketch-time-tool/http-server/respond"
	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type MonthTransmitter interface {
	Transmit(ctx context.Context, id storage.Identity, p storage.Payload) (service.TransmitResult, error)
}

type Response struct {
	Accepted bool `json:"accepted"`
	service.TransmitResult
}

func TransmitMonth(log *slog.Logger, tr MonthTransmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.transmit.TransmitMonth"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		var req storage.Payload
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.Rejected(log, w, r, op, &service.ValidationError{Problems: []string{"malformed JSON: " + err.Error()}})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res, err := tr.Transmit(ctx, id, req)
		if err != nil {
			respond.Rejected(log, w, r, op, err)
			return
		}

		render.JSON(w, r, Response{Accepted: true, TransmitResult: res})
	}
}
