package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateoquiroga/agencydesk-backend/api/controllers"
	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	"github.com/mateoquiroga/agencydesk-backend/internal/accounts"
	"github.com/mateoquiroga/agencydesk-backend/internal/auth"
	"github.com/mateoquiroga/agencydesk-backend/internal/billing"
	"github.com/mateoquiroga/agencydesk-backend/internal/cart"
	"github.com/mateoquiroga/agencydesk-backend/pkg/auth/session"
	"github.com/mateoquiroga/agencydesk-backend/pkg/config"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

type sessionManager interface {
	session.AccessSessionChecker
	session.SessionRevoker
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Sessions       sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	Accounts       accounts.Service
	Deletion       controllers.UserCascadeDeleter
	CartService    cart.Service
	Billing        billing.Service
	Users          controllers.BillingUserLookup
	Catalog        controllers.CatalogLister
	Projects       projectRepo
	Contact        controllers.ContactStore
	HealthDeps     map[string]controllers.Pinger
	MetricsHandler http.Handler
}

type projectRepo interface {
	controllers.ProjectReader
	controllers.ProjectWriter
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.HealthDeps))
	})
	r.Handle("/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS())

		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(d.AuthService, logg))
			r.Post("/register", controllers.AuthRegister(d.Register, logg))
			r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
				Post("/logout", controllers.AuthLogout(d.AuthService, logg))
		})

		// Public storefront reads and the anonymous contact form.
		r.Get("/api/v1/packs", controllers.CatalogPacks(d.Catalog, logg))
		r.Get("/api/v1/services", controllers.CatalogServices(d.Catalog, logg))
		r.Post("/api/v1/contact", controllers.ContactCreate(d.Contact, logg))

		// Cart routes accept either a bearer token or an X-Cart-Token header,
		// so auth is optional here and resolved inside the controllers.
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Use(optionalAuth(cfg, d.Sessions, logg))
			r.Get("/", controllers.CartFetch(d.CartService, logg))
			r.Post("/packs", controllers.CartAddPack(d.CartService, logg))
			r.Post("/services", controllers.CartAddService(d.CartService, logg))
			r.Post("/quantity", controllers.CartUpdateQuantity(d.CartService, logg))
			r.Post("/remove", controllers.CartRemoveItem(d.CartService, logg))
			r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
				Post("/sync", controllers.CartSync(d.CartService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

			r.Post("/api/v1/account/delete", controllers.AccountDelete(d.Accounts, logg))
			r.Get("/api/v1/projects", controllers.ProjectsList(d.Projects, logg))

			r.Route("/api/v1/billing", func(r chi.Router) {
				r.Post("/checkout", controllers.BillingCheckout(d.Billing, d.Users, logg))
				r.Post("/portal", controllers.BillingPortal(d.Billing, logg))
				r.Get("/subscription", controllers.BillingSubscription(d.Billing, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminCORS())
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Post("/users/delete", controllers.AdminDeleteUser(d.Deletion, logg))
		r.Post("/users/filter", controllers.AdminFilterUsers(d.Accounts, logg))
		r.Post("/projects/update", controllers.AdminProjectUpdate(d.Projects, logg))
		r.Get("/messages", controllers.AdminContactList(d.Contact, logg))
	})

	return r
}

// optionalAuth seeds claims into the context when a bearer token is present
// and passes the request through untouched otherwise.
func optionalAuth(cfg *config.Config, sessions sessionManager, logg *logger.Logger) func(http.Handler) http.Handler {
	authed := middleware.Auth(cfg.JWT, sessions, logg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authed(next).ServeHTTP(w, r)
		})
	}
}
