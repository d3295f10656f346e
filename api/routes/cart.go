package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/microshop/microshop-backend/api/controllers"
	"github.com/microshop/microshop-backend/api/middleware"
	"github.com/microshop/microshop-backend/internal/cart"
	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/logger"
	pkgredis "github.com/microshop/microshop-backend/pkg/redis"
)

// NewCartRouter wires the cart service HTTP surface.
func NewCartRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	registry *prometheus.Registry,
	cartService cart.Service,
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

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Owner(cfg.Checkout.DefaultOwner, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/", controllers.GetCart(cartService, logg))
		r.Post("/", controllers.AddCartItem(cartService, logg))
		r.Delete("/", controllers.ClearCart(cartService, logg))
		r.Put("/{productId}", controllers.UpdateCartItem(cartService, logg))
		r.Delete("/{productId}", controllers.RemoveCartItem(cartService, logg))
	})

	return r
}
