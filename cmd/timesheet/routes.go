package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	"github.com/bigchunguss42069/sketch-time-tool/http-server/admin/rebuild"
	"github.com/bigchunguss42069/sketch-time-tool/http-server/cost-objects/archive"
	getcostobjects "github.com/bigchunguss42069/sketch-time-tool/http-server/cost-objects/get"
	generate_excel "github.com/bigchunguss42069/sketch-time-tool/http-server/generate-report/generate-excel"
	getoverview "github.com/bigchunguss42069/sketch-time-tool/http-server/overview/get"
	"github.com/bigchunguss42069/sketch-time-tool/http-server/transmit/save"
	"github.com/bigchunguss42069/sketch-time-tool/http-server/week-locks/update"
	"github.com/bigchunguss42069/sketch-time-tool/internal/config"
	"github.com/bigchunguss42069/sketch-time-tool/internal/middleware/auth"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	generate_excel2 "github.com/bigchunguss42069/sketch-time-tool/internal/service/generate-excel"
)

func routes(cfg config.Config, log *slog.Logger, ledger *service.LedgerService, genService *generate_excel2.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	apiRouter := chi.NewRouter()
	apiRouter.Use(auth.BearerAuth(cfg.JWTSecret))

	apiRouter.Post("/transmit-month", save.TransmitMonth(log, ledger))
	apiRouter.Get("/overview", getoverview.GetOverview(log, ledger))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.RequireAdmin)

	adminRouter.Get("/overview", getoverview.GetTeamOverview(log, ledger))
	adminRouter.Post("/week-locks", update.UpdateWeekLock(log, ledger))
	adminRouter.Get("/cost-objects", getcostobjects.GetCostObjects(log, ledger))
	adminRouter.Get("/cost-objects/{id}", getcostobjects.GetCostObject(log, ledger))
	adminRouter.Put("/cost-objects/{id}/archive", archive.UpdateArchive(log, ledger))
	adminRouter.Get("/report/excel", generate_excel.GenerateReportExcel(log, genService))
	adminRouter.Post("/index/rebuild", rebuild.RebuildIndex(log, ledger))

	apiRouter.Mount("/admin", adminRouter)
	router.Mount("/api", apiRouter)

	return router
}
