package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"reflect"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/blogem/inkwell/assets"
	"github.com/blogem/inkwell/authenticator"
	"github.com/blogem/inkwell/config"
	"github.com/blogem/inkwell/content"
	"github.com/blogem/inkwell/controllers"
	"github.com/blogem/inkwell/database/query"
	"github.com/blogem/inkwell/debugbar"
	appmiddleware "github.com/blogem/inkwell/middleware"
	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/querylog"
	"github.com/blogem/inkwell/repositories"
	"github.com/blogem/inkwell/security"
	"github.com/blogem/inkwell/services"
)

// newApp wires repositories, services and controllers into a router
func newApp(ctx context.Context, cfg config.Config, db *sql.DB, logger *zap.Logger) (http.Handler, error) {
	repos := repositories.NewRepositories(db)

	events := content.NewDispatcher()
	events.On(logContentEvent(logger), content.Events...)

	srvs := services.NewServices(repos, events)
	ctrl := controllers.NewControllers(srvs)

	var auth authenticator.Provider
	if cfg.Auth.Enabled {
		var err error
		auth, err = authenticator.NewOpenIDProvider(ctx, authenticator.OpenIDConfig{
			Issuer:       cfg.Auth.Issuer,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			CallbackURL:  cfg.Auth.CallbackURL,
			RolesClaim:   cfg.Auth.RolesClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenID provider: %w", err)
		}
	}

	return setupRouter(cfg, logger, ctrl, repos, auth)
}

// newDebugger builds the debug bar with the query log attached
func newDebugger(cfg config.DebugConfig, logger *zap.Logger) *debugbar.Debugger {
	skip := append(querylog.DefaultSkip(),
		reflect.TypeOf(query.Error{}).PkgPath()+".",
		reflect.TypeOf(repositories.Repositories{}).PkgPath()+".",
	)
	skip = append(skip, cfg.SkipPrefixes...)

	return debugbar.New(
		debugbar.Config{Enabled: cfg.Enabled, Editor: cfg.Editor},
		logger,
		querylog.Extension{
			Filter: querylog.SourceFilter{Skip: skip, Allow: cfg.AllowPrefixes},
			Editor: cfg.Editor,
		},
	)
}

// logContentEvent logs every page lifecycle event at debug level
func logContentEvent(logger *zap.Logger) content.Listener {
	return func(ctx context.Context, event content.Event, subject any) error {
		fields := []zap.Field{zap.Stringer("event", event)}
		if page, ok := subject.(*models.Page); ok {
			fields = append(fields, zap.String("slug", page.Slug))
		}
		logger.Debug("Content event", fields...)
		return nil
	}
}

// setupRouter configures all routes. auth is nil when authentication is disabled.
func setupRouter(cfg config.Config, logger *zap.Logger, ctrl *controllers.Controllers, repos *repositories.Repositories, auth authenticator.Provider) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Session middleware
	lifetime := int64(cfg.Server.SessionLifetime.Seconds())
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "inkwell_session",
		Secure:         cfg.Server.SecureCookies,
		Gclifetime:     lifetime,
		Maxlifetime:    lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	r.Use(newDebugger(cfg.Debug, logger).Middleware)

	r.Handle("/static/*", http.StripPrefix("/static/", assets.NewHandler(assets.Static(), assets.DefaultFilters("inkwell"))))

	// PUBLIC ROUTES (no authentication required)
	r.Get("/", ctrl.Dashboard.Home)
	r.Get("/p/{slug}", ctrl.Pages.Show)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "inkwell"}`)
	})

	requireUser := appmiddleware.RequireAuth
	if auth != nil {
		r.Get("/login", ctrl.Auth.Login(auth))
		r.Get("/callback", ctrl.Auth.Callback(auth))
		r.Get("/logout", ctrl.Auth.Logout)
	} else {
		requireUser = appmiddleware.StaticUser(cfg.Auth.DevUser, cfg.Auth.DevRoles)
		r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})
	}

	// PROTECTED ROUTES (authentication required)
	var verifier security.RoleVerifier
	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Use(appmiddleware.AuditLogger(repos.Audit, logger))

		r.Get("/dashboard", ctrl.Dashboard.Index)

		// Page management routes
		r.Route("/pages", func(r chi.Router) {
			r.Use(security.Protect(verifier, ctrl.Pages))
			r.Get("/", ctrl.Pages.Index)
			r.Get("/new", ctrl.Pages.New)
			r.Post("/", ctrl.Pages.Create)
			r.Get("/{id}/edit", ctrl.Pages.Edit)
			r.Post("/{id}", ctrl.Pages.Update)
			r.Post("/{id}/delete", ctrl.Pages.Delete)
		})

		// Tag management routes
		r.Route("/tags", func(r chi.Router) {
			r.Use(security.Protect(verifier, ctrl.Tags))
			r.Get("/", ctrl.Tags.Index)
			r.Post("/", ctrl.Tags.Create)
			r.Post("/{id}/delete", ctrl.Tags.Delete)
		})
	})

	return r, nil
}
