// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applicationsfeature "github.com/ringihub/ringihub/internal/app/features/applications"
	attachmentsfeature "github.com/ringihub/ringihub/internal/app/features/attachments"
	groupsfeature "github.com/ringihub/ringihub/internal/app/features/groups"
	healthfeature "github.com/ringihub/ringihub/internal/app/features/health"
	loginfeature "github.com/ringihub/ringihub/internal/app/features/login"
	logoutfeature "github.com/ringihub/ringihub/internal/app/features/logout"
	usersfeature "github.com/ringihub/ringihub/internal/app/features/users"
	"github.com/ringihub/ringihub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. It creates the session
// manager, applies the session-loading middleware globally, and mounts
// one feature router per application area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	fileStore, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		logger.Error("file storage init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Directory
	usersHandler := usersfeature.NewHandler(db, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	groupsHandler := groupsfeature.NewHandler(db, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// The approval engine
	applicationsHandler := applicationsfeature.NewHandler(db, logger)
	r.Mount("/applications", applicationsfeature.Routes(applicationsHandler, sessionMgr))

	// File attachments
	attachmentsHandler := attachmentsfeature.NewHandler(db, fileStore, logger)
	r.Mount("/files", attachmentsfeature.Routes(attachmentsHandler, sessionMgr))

	return r, nil
}
