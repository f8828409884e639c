package update

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

type WeekLocker interface {
	SetWeekLock(ctx context.Context, id storage.Identity, worker string, weekYear, week int, locked bool) (storage.WeekLock, error)
}

type Request struct {
	WorkerID string `json:"workerId"`
	WeekYear int    `json:"weekYear"`
	Week     int    `json:"week"`
	Locked   *bool  `json:"locked"`
}

type Response struct {
	WorkerID string `json:"workerId"`
	WeekKey  string `json:"weekKey"`
	storage.WeekLock
}

func UpdateWeekLock(log *slog.Logger, locker WeekLocker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weeklocks.UpdateWeekLock"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.Error(log, w, r, op, &service.ValidationError{Problems: []string{"malformed JSON: " + err.Error()}})
			return
		}

		if req.Locked == nil {
			respond.Error(log, w, r, op, &service.ValidationError{Problems: []string{"locked: required"}})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		lock, err := locker.SetWeekLock(ctx, id, req.WorkerID, req.WeekYear, req.Week, *req.Locked)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		log.Info("week lock changed",
			slog.String("worker", req.WorkerID),
			slog.String("week", storage.WeekKey(req.WeekYear, req.Week)),
			slog.Bool("locked", lock.Locked),
			slog.String("by", id.WorkerID),
		)

		render.JSON(w, r, Response{
			WorkerID: req.WorkerID,
			WeekKey:  storage.WeekKey(req.WeekYear, req.Week),
			WeekLock: lock,
		})
	}
}
