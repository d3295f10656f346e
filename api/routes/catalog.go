package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/microshop/microshop-backend/api/controllers"
	"github.com/microshop/microshop-backend/api/middleware"
	"github.com/microshop/microshop-backend/internal/catalog"
	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/logger"
	pkgredis "github.com/microshop/microshop-backend/pkg/redis"
)

// NewCatalogRouter wires the catalog service HTTP surface.
func NewCatalogRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	registry *prometheus.Registry,
	catalogService catalog.Service,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Post("/", controllers.CreateProduct(catalogService, logg))
		r.Post("/seed", controllers.SeedCatalog(catalogService, cfg, logg))
		r.Get("/{productId}", controllers.GetProduct(catalogService, logg))
	})

	return r
}
