package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gudang-backend/api/controllers"
	"github.com/angelmondragon/gudang-backend/api/middleware"
	"github.com/angelmondragon/gudang-backend/internal/auth"
	"github.com/angelmondragon/gudang-backend/internal/categories"
	"github.com/angelmondragon/gudang-backend/internal/goodsin"
	"github.com/angelmondragon/gudang-backend/internal/goodsout"
	"github.com/angelmondragon/gudang-backend/internal/items"
	"github.com/angelmondragon/gudang-backend/internal/ledger"
	"github.com/angelmondragon/gudang-backend/internal/users"
	"github.com/angelmondragon/gudang-backend/pkg/auth/session"
	"github.com/angelmondragon/gudang-backend/pkg/config"
	"github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
	"github.com/angelmondragon/gudang-backend/pkg/metrics"
	"github.com/angelmondragon/gudang-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	userService users.Service,
	categoryService categories.Service,
	itemService items.Service,
	goodsInService goodsin.Service,
	goodsOutService goodsout.Service,
	ledgerService ledger.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.SecureHeaders(cfg.App.IsDev()),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbP,
			"redis":    redisClient,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Get("/me", controllers.AuthMe(userService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RateLimit(cfg.HTTPRateLimit, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Idempotency.TTL, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(itemService, logg))
			r.Post("/", controllers.ItemCreate(itemService, logg))
			r.Get("/search", controllers.ItemSearch(itemService, logg))
			r.Get("/serial-search", controllers.ItemSerialSearch(itemService, logg))
			r.Get("/{id}", controllers.ItemGet(itemService, logg))
			r.Put("/{id}", controllers.ItemUpdate(itemService, logg))
			r.Delete("/{id}", controllers.ItemDelete(itemService, logg))
		})

		r.Route("/item-categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoryService, logg))
			r.Post("/", controllers.CategoryCreate(categoryService, logg))
			r.Put("/{id}", controllers.CategoryUpdate(categoryService, logg))
			r.Delete("/{id}", controllers.CategoryDelete(categoryService, logg))
		})

		r.Route("/goods-in", func(r chi.Router) {
			r.Get("/", controllers.GoodsInList(goodsInService, logg))
			r.Post("/", controllers.GoodsInCreate(goodsInService, logg))
			r.Get("/{id}", controllers.GoodsInGet(goodsInService, logg))
			r.Delete("/{id}", controllers.GoodsInDelete(goodsInService, logg))
		})

		r.Route("/goods-out", func(r chi.Router) {
			r.Get("/", controllers.GoodsOutList(goodsOutService, logg))
			r.Post("/", controllers.GoodsOutCreate(goodsOutService, logg))
			r.Get("/{id}", controllers.GoodsOutGet(goodsOutService, logg))
			r.Delete("/{id}", controllers.GoodsOutDelete(goodsOutService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleApprover, enums.UserRoleAdmin)).
				Put("/{id}/approve", controllers.GoodsOutDecide(goodsOutService, logg))
		})

		r.Get("/transactions", controllers.StockTransactionList(ledgerService, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/", controllers.UserList(userService, logg))
			r.Post("/", controllers.UserCreate(userService, logg))
			r.Get("/{id}", controllers.UserGet(userService, logg))
			r.Put("/{id}", controllers.UserUpdate(userService, logg))
		})
	})

	return r
}
