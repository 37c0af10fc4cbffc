// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/volunteerhub/volunteerhub/internal/app/features/admin"
	healthfeature "github.com/volunteerhub/volunteerhub/internal/app/features/health"
	leaderboardfeature "github.com/volunteerhub/volunteerhub/internal/app/features/leaderboard"
	loginfeature "github.com/volunteerhub/volunteerhub/internal/app/features/login"
	logoutfeature "github.com/volunteerhub/volunteerhub/internal/app/features/logout"
	ngosfeature "github.com/volunteerhub/volunteerhub/internal/app/features/ngos"
	projectsfeature "github.com/volunteerhub/volunteerhub/internal/app/features/projects"
	registerfeature "github.com/volunteerhub/volunteerhub/internal/app/features/register"
	tasksfeature "github.com/volunteerhub/volunteerhub/internal/app/features/tasks"
	userinfofeature "github.com/volunteerhub/volunteerhub/internal/app/features/userinfo"
	usersfeature "github.com/volunteerhub/volunteerhub/internal/app/features/users"
	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auditlog"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. It initializes the session store,
// builds the shared audit logger and mailer, and mounts the JSON API
// under /api plus the health endpoint and the static frontend.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	mail := mailer.New(appCfg.SendGridAPIKey, appCfg.MailFrom, appCfg.MailFromName, logger)

	r := chi.NewRouter()

	// Loads the SessionUser into the request context when signed in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Authentication and registration.
	r.Mount("/api/register", registerfeature.Routes(registerfeature.NewHandler(db, auditLog, logger)))
	r.Mount("/api/login", loginfeature.Routes(loginfeature.NewHandler(db, auditLog, logger)))
	r.Mount("/api/logout", logoutfeature.Routes(logoutfeature.NewHandler(auditLog, logger)))
	r.Mount("/api/userinfo", userinfofeature.Routes(userinfofeature.NewHandler()))

	// Core resources.
	r.Mount("/api/users", usersfeature.Routes(usersfeature.NewHandler(db, logger)))
	r.Mount("/api/ngos", ngosfeature.Routes(ngosfeature.NewHandler(db, logger)))

	tasksHandler := tasksfeature.NewHandler(db, auditLog, mail, logger)
	projectsHandler := projectsfeature.NewHandler(db, auditLog, mail, logger)
	r.Mount("/api/projects", projectsfeature.Routes(projectsHandler, tasksHandler))
	r.Mount("/api/tasks", tasksfeature.Routes(tasksHandler))

	r.Mount("/api/leaderboard", leaderboardfeature.Routes(leaderboardfeature.NewHandler(db, logger)))

	// Admin console.
	r.Mount("/api/admin", adminfeature.Routes(adminfeature.NewHandler(db, auditLog, mail, logger)))

	// Static frontend with pre-compressed file support (gzip/brotli).
	r.Handle("/*", fileserver.Handler("/", "public"))

	return r, nil
}
