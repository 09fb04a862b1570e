package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quartermasterlabs/armory-backend/api/controllers"
	"github.com/quartermasterlabs/armory-backend/api/middleware"
	"github.com/quartermasterlabs/armory-backend/internal/ledger"
	"github.com/quartermasterlabs/armory-backend/internal/lifecycle"
	"github.com/quartermasterlabs/armory-backend/internal/reporting"
	"github.com/quartermasterlabs/armory-backend/pkg/config"
	"github.com/quartermasterlabs/armory-backend/pkg/db"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	idemStore redis.IdempotencyStore,
	lifecycleService lifecycle.Service,
	reportingService reporting.Service,
	ledgerRepo ledger.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		// custody movement requires the armorer role
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireTransactionRecorder(logg))
			r.Post("/intake/submissions", controllers.SubmitIntake(lifecycleService, logg))
			r.Post("/checkouts", controllers.CreateCheckout(lifecycleService, logg))
			r.Post("/checkins", controllers.CreateCheckin(lifecycleService, logg))
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/available", controllers.ListAvailableEquipment(lifecycleService, logg))
			r.Get("/{serial}/availability", controllers.GetEquipmentAvailability(lifecycleService, logg))
			r.Get("/{serial}/earliest-available", controllers.GetEarliestAvailable(lifecycleService, logg))
			r.Get("/{serial}/transactions", controllers.ListEquipmentTransactions(ledgerRepo, logg))
		})

		r.Get("/transactions", controllers.ListTransactions(ledgerRepo, logg))
		r.Get("/reports/overdue", controllers.GetOverdueReport(lifecycleService, logg))
		r.Get("/dashboard", controllers.GetDashboard(reportingService, logg))
	})

	return r
}
