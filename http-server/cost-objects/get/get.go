package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/bigchunguss42069/sketch-time-tool/http-server/respond"
	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type CostObjectProvider interface {
	CostObjects(ctx context.Context, id storage.Identity, f service.CostObjectFilter) ([]service.CostObjectSummary, error)
	CostObject(ctx context.Context, id storage.Identity, costObjectID string) (service.CostObjectDetail, error)
}

// GetCostObjects serves ?status=active|archived|all&search=...
func GetCostObjects(log *slog.Logger, provider CostObjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costobjects.GetCostObjects"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		filter := service.CostObjectFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := provider.CostObjects(ctx, id, filter)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func GetCostObject(log *slog.Logger, provider CostObjectProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costobjects.GetCostObject"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		detail, err := provider.CostObject(ctx, id, chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		render.JSON(w, r, detail)
	}
}
