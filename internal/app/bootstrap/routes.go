// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/schoolhub/internal/app/features/accounts"
	announcementsfeature "github.com/dalemusser/schoolhub/internal/app/features/announcements"
	errorsfeature "github.com/dalemusser/schoolhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/schoolhub/internal/app/features/health"
	homefeature "github.com/dalemusser/schoolhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/schoolhub/internal/app/features/login"
	userstore "github.com/dalemusser/schoolhub/internal/app/store/users"
	"github.com/dalemusser/schoolhub/internal/app/system/auth"
	"github.com/dalemusser/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// closeControllers tears down session-scoped page state. Set by
// BuildHandler, read by Shutdown.
var closeControllers = func() {}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. SchoolHub initializes the template
// engine, applies session middleware, and mounts feature routers: home,
// login, health, the announcements dashboard, and account creation.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes and deactivated accounts take effect
	// immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Public pages
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/", homefeature.Routes(homeHandler, errorsHandler.NotFound))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Get("/logout", loginHandler.HandleSignOut)

	// Announcements dashboard: admins and staff manage the school feed.
	var annOpts []announcementsfeature.Option
	if appCfg.ArchiveRollback {
		annOpts = append(annOpts, announcementsfeature.WithArchiveRollback())
	}
	annHandler := announcementsfeature.NewHandler(deps.MongoDatabase, errLog, logger, annOpts...)
	closeControllers = annHandler.CloseAll
	loginHandler.OnSignOut = annHandler.EvictController

	r.Route("/dashboard/announcements", func(sub chi.Router) {
		sub.Use(sessionMgr.RequireSignedIn)
		sub.Use(sessionMgr.RequireRole(models.RoleAdmin, models.RoleStaff))
		annHandler.MountRoutes(sub)
	})

	// Account creation: admins add parents and staff.
	accountsHandler := accountsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Route("/dashboard/parents", func(sub chi.Router) {
		sub.Use(sessionMgr.RequireSignedIn)
		sub.Use(sessionMgr.RequireRole(models.RoleAdmin))
		accountsHandler.MountParentRoutes(sub)
	})
	r.Route("/dashboard/staff", func(sub chi.Router) {
		sub.Use(sessionMgr.RequireSignedIn)
		sub.Use(sessionMgr.RequireRole(models.RoleAdmin))
		accountsHandler.MountStaffRoutes(sub)
	})

	return r, nil
}
