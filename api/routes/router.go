// Package routes assembles the HTTP surface over the ledger.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwhitaker/stockroom/api/controllers"
	"github.com/mwhitaker/stockroom/api/middleware"
	"github.com/mwhitaker/stockroom/internal/reconcile"
	"github.com/mwhitaker/stockroom/internal/registry"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/config"
	"github.com/mwhitaker/stockroom/pkg/db"
	"github.com/mwhitaker/stockroom/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	st *store.Store,
	reg *registry.Repository,
	stockSvc *reconcile.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, dbP, logg))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/inventory", controllers.ListInventory(st, logg))
		r.Get("/inventory/{partKey}", controllers.GetInventoryPart(st, logg))
		r.Get("/orders", controllers.ListOrders(st, logg))
		r.Get("/orders/{orderUID}", controllers.GetOrder(st, logg))
		r.Get("/labels", controllers.ListLabelRows(st, logg))
		r.Get("/ingests", controllers.RecentIngests(reg, logg))

		r.Post("/stock/receive", controllers.ReceiveStock(stockSvc, logg))
		r.Post("/stock/remove", controllers.RemoveStock(stockSvc, logg))
	})

	return r
}
