package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderdesk/orderdesk-backend/api/controllers"
	"github.com/orderdesk/orderdesk-backend/api/middleware"
	"github.com/orderdesk/orderdesk-backend/internal/ledger"
	"github.com/orderdesk/orderdesk-backend/internal/orders"
	"github.com/orderdesk/orderdesk-backend/internal/payments"
	"github.com/orderdesk/orderdesk-backend/internal/promo"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"github.com/orderdesk/orderdesk-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. The registry may be nil,
// in which case /metrics serves the default gatherer.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Orders   orders.Service
	Payments payments.Service
	Ledger   ledger.Service
	Promo    promo.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var redisPinger db.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/{orderId}/quote", controllers.OrderQuote(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
			r.Post("/{orderId}/decline-wallet", controllers.DeclineWallet(deps.Orders, logg))
			r.Post("/{orderId}/report-payment", controllers.ReportPayment(deps.Payments, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOperator(logg))
				r.Post("/{orderId}/price", controllers.SetOrderPrice(deps.Orders, logg))
				r.Post("/{orderId}/reject", controllers.RejectOrder(deps.Orders, logg))
				r.Post("/{orderId}/advance", controllers.AdvanceOrder(deps.Orders, logg))
				r.Post("/{orderId}/confirm-payment", controllers.ConfirmPayment(deps.Payments, logg))
				r.Post("/{orderId}/reject-payment", controllers.RejectPayment(deps.Payments, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/{customerId}/balance", controllers.CustomerBalance(deps.Ledger, logg))
			r.Get("/{customerId}/transactions", controllers.CustomerTransactions(deps.Ledger, logg))
		})

		r.Get("/promos/{code}/check", controllers.CheckPromo(deps.Promo, logg))
	})

	return r
}
