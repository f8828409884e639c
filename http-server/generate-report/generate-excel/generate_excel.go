package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/http-server/respond"
	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, id storage.Identity, f service.CostObjectFilter) ([]byte, error)
}

func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respond.Unauthorized(w, r)
			return
		}

		filter := service.CostObjectFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, id, filter)
		if err != nil {
			respond.Error(log, w, r, op, err)
			return
		}

		fileName := fmt.Sprintf("Kostenobjekte_%s_%s.xlsx", id.TeamID, time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write excel", slog.String("op", op), slog.String("error", err.Error()))
		}
	}
}
