package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/bigchunguss42069/sketch-time-tool/http-server/respond"
	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type OverviewProvider interface {
	Overview(ctx context.Context, id storage.Identity, worker string, year, monthIndex int) (service.WorkerOverview, error)
	TeamOverview(ctx context.Context, id storage.Identity, year, monthIndex int) ([]service.WorkerOverview, error)
}

// GetOverview serves ?year=2025&monthIndex=2[&worker=anna].
func GetOverview(log *slog.Logger, provider OverviewProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.overview.GetOverview"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		year, monthIndex, err := parseMonth(r)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		ov, err := provider.Overview(ctx, id, r.URL.Query().Get("worker"), year, monthIndex)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		render.JSON(w, r, ov)
	}
}

func GetTeamOverview(log *slog.Logger, provider OverviewProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.overview.GetTeamOverview"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		year, monthIndex, err := parseMonth(r)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		workers, err := provider.TeamOverview(ctx, id, year, monthIndex)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"year":       year,
			"monthIndex": monthIndex,
			"workers":    workers,
		})
	}
}

// parseMonth defaults to the current month.
func parseMonth(r *http.Request) (int, int, error) {
	now := time.Now()
	year, monthIndex := now.Year(), int(now.Month())-1

	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, &service.ValidationError{Problems: []string{"year must be a number"}}
		}
		year = v
	}
	if s := q.Get("monthIndex"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, &service.ValidationError{Problems: []string{"monthIndex must be a number"}}
		}
		monthIndex = v
	}
	return year, monthIndex, nil
}
