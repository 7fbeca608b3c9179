package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rvellora/stockline-backend/api/controllers"
	"github.com/rvellora/stockline-backend/api/middleware"
	itemsvc "github.com/rvellora/stockline-backend/internal/items"
	syncersvc "github.com/rvellora/stockline-backend/internal/syncer"
	"github.com/rvellora/stockline-backend/pkg/config"
	"github.com/rvellora/stockline-backend/pkg/db"
	"github.com/rvellora/stockline-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP db.Pinger,
	registry *prometheus.Registry,
	itemService itemsvc.Service,
	syncService syncersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(itemService, logg))
			r.Post("/", controllers.CreateItem(itemService, logg))
			r.Get("/export", controllers.ExportItemsCSV(itemService, logg))
			r.Post("/import", controllers.ImportItemsCSV(itemService, logg))
			r.Get("/{itemId}", controllers.GetItem(itemService, logg))
			r.Patch("/{itemId}", controllers.UpdateItem(itemService, logg))
			r.Delete("/{itemId}", controllers.DeleteItem(itemService, logg))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", controllers.SyncStatus(syncService, logg))
			r.Post("/catalog", controllers.SyncCatalog(syncService, logg))
			r.Post("/orders", controllers.SyncOrders(syncService, logg))
			r.Post("/push", controllers.SyncPushAll(syncService, logg))
			r.Post("/push/{itemId}", controllers.SyncPushItem(syncService, logg))
		})
	})

	return r
}
