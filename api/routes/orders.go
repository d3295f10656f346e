package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/microshop/microshop-backend/api/controllers"
	"github.com/microshop/microshop-backend/api/middleware"
	checkoutsvc "github.com/microshop/microshop-backend/internal/checkout"
	"github.com/microshop/microshop-backend/internal/orders"
	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/logger"
	pkgredis "github.com/microshop/microshop-backend/pkg/redis"
)

// NewOrdersRouter wires the order service HTTP surface, checkout included.
func NewOrdersRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	registry *prometheus.Registry,
	checkoutService checkoutsvc.Service,
	orderService orders.Service,
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

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Owner(cfg.Checkout.DefaultOwner, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/", controllers.PlaceOrder(checkoutService, logg))
		r.Get("/", controllers.ListOrders(orderService, logg))
		r.Get("/{orderId}", controllers.GetOrder(orderService, logg))
		r.Patch("/{orderId}", controllers.SetOrderStatus(orderService, logg))
	})

	return r
}
