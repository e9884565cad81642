package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixelvault/arttoys-backend/api/controllers"
	"github.com/pixelvault/arttoys-backend/api/middleware"
	"github.com/pixelvault/arttoys-backend/internal/catalog"
	"github.com/pixelvault/arttoys-backend/internal/orders"
	"github.com/pixelvault/arttoys-backend/internal/users"
	"github.com/pixelvault/arttoys-backend/pkg/auth/session"
	"github.com/pixelvault/arttoys-backend/pkg/config"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
	"github.com/pixelvault/arttoys-backend/pkg/logger"
	"github.com/pixelvault/arttoys-backend/pkg/metrics"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry

	Catalog catalog.Service
	Orders  orders.Service
	Users   users.Service

	// ReadyChecks are pinged by /health/ready, keyed by dependency name.
	ReadyChecks map[string]controllers.Pinger
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(params.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.ReadyChecks))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(params.Users, logg))
		r.Post("/login", controllers.Login(params.Users, logg))
		if cfg.App.IsDev() {
			r.Post("/register-admin", controllers.RegisterAdmin(params.Users, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, params.Sessions, logg))
			r.Post("/logout", controllers.Logout(params.Users, logg))
		})
	})

	r.Route("/api/v1/arttoys", func(r chi.Router) {
		// Catalog reads are open so the storefront can browse before login.
		r.Get("/", controllers.ListArtToys(params.Catalog, logg))
		r.Get("/{id}", controllers.GetArtToy(params.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, params.Sessions, logg),
				middleware.RequireRole(string(enums.UserRoleAdmin), logg),
			)
			r.Post("/", controllers.CreateArtToy(params.Catalog, logg))
			r.Put("/{id}", controllers.UpdateArtToy(params.Catalog, logg))
			r.Patch("/{id}", controllers.UpdateArtToy(params.Catalog, logg))
			r.Delete("/{id}", controllers.DeleteArtToy(params.Catalog, logg))
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, params.Sessions, logg))

		r.With(middleware.RequireRole(string(enums.UserRoleMember), logg)).
			Post("/", controllers.CreateOrder(params.Orders, logg))
		r.Get("/", controllers.ListOrders(params.Orders, logg))
		r.Get("/{id}", controllers.GetOrder(params.Orders, logg))
		r.Put("/{id}", controllers.UpdateOrder(params.Orders, logg))
		r.Patch("/{id}", controllers.UpdateOrder(params.Orders, logg))
		r.Delete("/{id}", controllers.DeleteOrder(params.Orders, logg))
	})

	return r
}
