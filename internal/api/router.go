package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bazaar-shop/marketplace/internal/api/handlers"
	mw "github.com/bazaar-shop/marketplace/internal/api/middleware"
	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/services"
)

const Version = "1.0.0"

type Dependencies struct {
	Auth     services.AuthService
	Products services.ProductService
	Sessions mw.SessionResolver
	Store    handlers.Pinger

	// Images is optional; upload presigning is not mounted without it.
	Images handlers.ImagePresigner
	// AuthLimiter throttles register and login per client IP. Optional.
	AuthLimiter mw.Limiter

	CORSAllowedOrigins []string
	ExposeErrorDetail  bool

	// Registry receives the HTTP metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
}

func NewRouter(dep Dependencies) http.Handler {
	types.ExposeErrorDetail(dep.ExposeErrorDetail)
	reg := dep.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := mw.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(chimid.RealIP)
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(metrics.Instrument)
	r.Use(mw.CORS(dep.CORSAllowedOrigins))
	r.Use(chimid.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		types.WriteJSON(w, http.StatusNotFound, types.APIResponse{Success: false, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		types.WriteJSON(w, http.StatusMethodNotAllowed, types.APIResponse{Success: false, Message: "method not allowed"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		types.WriteJSON(w, http.StatusOK, map[string]string{"message": "marketplace api is running", "version": Version})
	})

	hh := handlers.NewHealthHandler(dep.Store)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	authed := mw.Guard(mw.Authenticate(dep.Sessions))
	sellerOnly := mw.Guard(mw.Authenticate(dep.Sessions), mw.RequireRole(models.RoleSeller))

	ah := handlers.NewAuthHandler(dep.Auth)
	ph := handlers.NewProductsHandler(dep.Products)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Group(func(limited chi.Router) {
				if dep.AuthLimiter != nil {
					limited.Use(mw.RateLimit(dep.AuthLimiter, "auth", metrics.RateLimited))
				}
				limited.Post("/register", ah.Register)
				limited.Post("/login", ah.Login)
			})
			ar.With(authed).Get("/me", ah.Me)
		})

		api.Route("/products", func(pr chi.Router) {
			pr.Get("/", ph.List)
			pr.With(sellerOnly).Get("/my/products", ph.Mine)
			pr.With(sellerOnly).Post("/", ph.Create)
			if dep.Images != nil {
				pr.With(sellerOnly).Post("/images", handlers.NewImagesHandler(dep.Images).Presign)
			}
			pr.Get("/{id}", ph.Get)
			pr.With(sellerOnly).Put("/{id}", ph.Update)
			pr.With(sellerOnly).Delete("/{id}", ph.Delete)
		})
	})

	return r
}
