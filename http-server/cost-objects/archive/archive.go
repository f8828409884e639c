package archive

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

type Archiver interface {
	SetArchived(ctx context.Context, id storage.Identity, costObjectID string, archived bool) (storage.ArchiveFlag, error)
}

type Request struct {
	Archived *bool `json:"archived"`
}

func UpdateArchive(log *slog.Logger, archiver Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costobjects.UpdateArchive"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil || req.Archived == nil {
			respond.Error(log, w, r, op, &service.ValidationError{Problems: []string{"body must be {\"archived\": true|false}"}})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		costObjectID := chi.URLParam(r, "id")
		flag, err := archiver.SetArchived(ctx, id, costObjectID, *req.Archived)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"id":      costObjectID,
			"archive": flag,
		})
	}
}
