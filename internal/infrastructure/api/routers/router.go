package routers

import (
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mufasadev/donation-ledger/internal/di"
	http2 "github.com/mufasadev/donation-ledger/internal/infrastructure/api/http"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/api/middlewares"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	// Set up v1 routes with a path prefix
	router.Route("/api/v1", func(r chi.Router) {
		dh := container.DonationHandler

		r.Route(fmt.Sprintf("/campaigns/{%s}", http2.CampaignIDParam), func(r chi.Router) {
			r.Use(middlewares.CampaignValidationMiddleware())
			r.Post("/donations/intent", dh.CreateIntent)
		})

		r.Post("/donations/confirm", dh.Confirm)

		r.Route("/webhooks/payments", func(r chi.Router) {
			r.Use(middlewares.WebhookSignatureMiddleware())
			r.Post("/", container.WebhookHandler.Receive)
		})

		r.Route(fmt.Sprintf("/users/{%s}", http2.UserIDParam), func(r chi.Router) {
			r.Use(middlewares.UserValidationMiddleware())
			r.Get("/notifications", container.NotificationHandler.Recent)
		})
	})

	return router
}
