package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborline/shipline-backend/api/controllers"
	"github.com/harborline/shipline-backend/api/middleware"
	"github.com/harborline/shipline-backend/api/responses"
	"github.com/harborline/shipline-backend/internal/auth"
	"github.com/harborline/shipline-backend/internal/vessels"
	"github.com/harborline/shipline-backend/pkg/config"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
	"github.com/harborline/shipline-backend/pkg/metrics"
	"github.com/harborline/shipline-backend/pkg/ratelimit"
)

const compressionLevel = 5

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	health controllers.HealthDeps,
	userResolver middleware.UserResolver,
	authService auth.Service,
	vesselService vessels.Service,
	limiter ratelimit.Store,
	httpMetrics *metrics.HTTPMetrics,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		err := pkgerrors.New(pkgerrors.CodeRouteNotFound, fmt.Sprintf("Route %s %s not found", req.Method, req.URL.Path))
		responses.WriteError(req.Context(), logg, w, err)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		err := pkgerrors.New(pkgerrors.CodeMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", req.Method, req.URL.Path))
		responses.WriteError(req.Context(), logg, w, err)
	})

	rateLimits := middleware.RateLimitOptions{Store: limiter, Metrics: httpMetrics}
	exemptLoopback := cfg.App.IsDev()
	generalPolicy := middleware.RateLimitPolicy{
		Name:           "general",
		Window:         cfg.RateLimit.GeneralWindow,
		Limit:          cfg.RateLimit.GeneralLimit,
		Message:        "Too many requests from this IP, please try again later",
		ExemptLoopback: exemptLoopback,
	}
	apiPolicy := middleware.RateLimitPolicy{
		Name:           "api",
		Window:         cfg.RateLimit.APIWindow,
		Limit:          cfg.RateLimit.APILimit,
		Message:        "API rate limit exceeded, please slow down",
		ExemptLoopback: exemptLoopback,
	}
	authPolicy := middleware.RateLimitPolicy{
		Name:           "auth",
		Window:         cfg.RateLimit.AuthWindow,
		Limit:          cfg.RateLimit.AuthLimit,
		Code:           pkgerrors.CodeTooManyAuthAttempts,
		Message:        "Too many authentication attempts, please try again later",
		SkipSuccessful: true,
		ExemptLoopback: exemptLoopback,
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.RealIP(cfg.HTTP.TrustedProxies),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.SecureHeaders(cfg.App.IsProd()),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		middleware.BodyLimit(cfg.HTTP.BodyLimitBytes),
	)
	if cfg.HTTP.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.HTTP.RequestTimeout))
	}
	r.Use(
		chimw.Compress(compressionLevel),
		middleware.RateLimit(generalPolicy, rateLimits, logg),
	)

	authOpts := middleware.AuthOptions{
		JWT:        cfg.JWT,
		CookieName: cfg.Cookie.Name,
		Users:      userResolver,
	}
	requireAuth := middleware.Authenticate(authOpts, logg)
	cookies := controllers.SessionCookies{Config: cfg.Cookie, Prod: cfg.App.IsProd()}

	r.Get("/", controllers.ServiceBanner(cfg))
	if registry != nil && cfg.FeatureFlags.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", controllers.APICatalog(cfg))

		r.Route("/health", func(r chi.Router) {
			r.Get("/", controllers.HealthStatus(cfg, health, logg))
			r.Get("/ready", controllers.HealthReady(health, logg))
			r.Get("/live", controllers.HealthLive(health))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(authPolicy, rateLimits, logg)).Post("/login", controllers.AuthLogin(authService, cookies, logg))
			r.Post("/logout", controllers.AuthLogout(cookies, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(authService, logg))
			r.With(requireAuth).Post("/refresh", controllers.AuthRefresh(authService, cookies, logg))
			r.With(middleware.OptionalAuth(authOpts, logg)).Get("/check", controllers.AuthCheck(authService))
		})

		r.Route("/vessels", func(r chi.Router) {
			r.Use(middleware.RateLimit(apiPolicy, rateLimits, logg))

			r.Get("/", controllers.VesselList(vesselService, logg))
			r.With(requireAuth).Post("/", controllers.VesselCreate(vesselService, logg))
			r.With(requireAuth).Get("/stats", controllers.VesselStats(vesselService, logg))
			r.With(requireAuth, middleware.RequireAdmin(logg)).Delete("/bulk", controllers.VesselBulkDelete(vesselService, logg))

			r.Get("/{id}", controllers.VesselGet(vesselService, logg))
			r.With(requireAuth).Put("/{id}", controllers.VesselUpdate(vesselService, logg))
			r.With(requireAuth).Delete("/{id}", controllers.VesselDelete(vesselService, logg))
		})
	})

	return r
}
