package rebuild

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/bigchunguss42069/sketch-time-tool/http-server/respond"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service/aggregate"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type IndexRepairer interface {
	Rebuild(ctx context.Context, dryRun bool) (storage.AggregationIndex, error)
	Verify(ctx context.Context) ([]aggregate.Mismatch, error)
}

type Response struct {
	DryRun          bool                 `json:"dryRun"`
	IndexUnreadable bool                 `json:"indexUnreadable"`
	Teams           int                  `json:"teams"`
	CostObjects     int                  `json:"costObjects"`
	Mismatches      []aggregate.Mismatch `json:"mismatches"`
}

// RebuildIndex reports the differences between the stored index and a fresh
// rebuild, then replaces the stored index unless ?dryRun=true. An unreadable
// stored index is reported and rebuilt instead of failing the request.
func RebuildIndex(log *slog.Logger, repairer IndexRepairer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.RebuildIndex"

		dryRun := r.URL.Query().Get("dryRun") == "true"

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		unreadable := false
		mismatches, err := repairer.Verify(ctx)
		if errors.Is(err, service.ErrIndexUnreadable) {
			log.Warn("stored index unreadable, rebuilding", slog.String("op", op), slog.String("error", err.Error()))
			unreadable = true
		} else if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		idx, err := repairer.Rebuild(ctx, dryRun)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		resp := Response{DryRun: dryRun, IndexUnreadable: unreadable, Teams: len(idx), Mismatches: mismatches}
		if resp.Mismatches == nil {
			resp.Mismatches = []aggregate.Mismatch{}
		}
		for _, team := range idx {
			resp.CostObjects += len(team)
		}

		log.Info("index rebuild requested", slog.Bool("dry_run", dryRun), slog.Int("mismatches", len(mismatches)))
		render.JSON(w, r, resp)
	}
}
