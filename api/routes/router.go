package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shopoverlay/api/controllers"
	"github.com/angelmondragon/shopoverlay/api/middleware"
	checkoutsvc "github.com/angelmondragon/shopoverlay/internal/checkout"
	"github.com/angelmondragon/shopoverlay/internal/host"
	"github.com/angelmondragon/shopoverlay/internal/receipts"
	"github.com/angelmondragon/shopoverlay/internal/session"
	pkgAuth "github.com/angelmondragon/shopoverlay/pkg/auth"
	"github.com/angelmondragon/shopoverlay/pkg/config"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	pkgredis "github.com/angelmondragon/shopoverlay/pkg/redis"
)

// Dependencies groups what the router wires into controllers. Receipts,
// Redis and Metrics are optional.
type Dependencies struct {
	DB         controllers.Pinger
	Redis      *pkgredis.Client
	Session    *session.Session
	Checkout   checkoutsvc.Service
	Receipts   receipts.Service
	Dispatcher *host.Dispatcher
	Stream     http.Handler
	Rejections controllers.RejectionCounter
	Metrics    http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{"db": deps.DB}
	var (
		idempotencyStore pkgredis.IdempotencyStore
		limiter          *pkgredis.Client
	)
	if deps.Redis != nil {
		ready["redis"] = deps.Redis
		idempotencyStore = deps.Redis
		limiter = deps.Redis
	}
	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", cfg.Checkout.RateWindow, cfg.Checkout.RateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/host", func(r chi.Router) {
		r.Use(middleware.HostAuth(cfg.Host, logg))
		r.Use(middleware.RequireRole(logg, pkgAuth.RoleHost))
		r.Post("/events", controllers.HostEvent(deps.Dispatcher, logg))
		if deps.Stream != nil {
			r.Method(http.MethodGet, "/stream", deps.Stream)
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.HostAuth(cfg.Host, logg))
		r.Use(middleware.RequireRole(logg, pkgAuth.RoleOverlay))

		r.Get("/session", controllers.SessionView(deps.Session, logg))
		r.Post("/session/notice/dismiss", controllers.SessionDismissNotice(deps.Session, logg))
		r.Get("/items/{itemID}/eligibility", controllers.ItemEligibility(deps.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Delete("/", controllers.CartClear(deps.Session, logg))
			r.Post("/items", controllers.CartAdd(deps.Session, deps.Rejections, logg))
			r.Put("/items/{itemID}", controllers.CartSetQuantity(deps.Session, logg))
			r.Delete("/items/{itemID}", controllers.CartRemove(deps.Session, logg))
		})

		r.Put("/mode", controllers.ModeSet(deps.Session, logg))
		r.Post("/mode/toggle", controllers.ModeToggle(deps.Session, logg))
		r.Post("/keys", controllers.KeyPress(deps.Session, logg))
		r.Post("/hide", controllers.Hide(deps.Session, logg))
		r.Get("/receipts", controllers.ReceiptsList(deps.Receipts, logg))

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(middleware.RateLimit(checkoutPolicy, limiter, logg))
			}
			r.Use(middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg))
			r.Post("/checkout/purchase", controllers.CheckoutPurchase(deps.Checkout, deps.Session, logg))
			r.Post("/checkout/sale", controllers.CheckoutSale(deps.Checkout, deps.Session, logg))
			r.Post("/robbery", controllers.Robbery(deps.Session, logg))
		})
	})

	return r
}
