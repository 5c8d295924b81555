package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatekit/userdir/directory"
	"github.com/gatekit/userdir/domain"
	"github.com/gatekit/userdir/echoauth"
	"github.com/gatekit/userdir/internal/api/handler"
	"github.com/gatekit/userdir/internal/infrastructure/config"
	storemongo "github.com/gatekit/userdir/store/mongo"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userdir"))

	// --- Dependencies ---
	repo := storemongo.NewUserRepository(db)
	dir := directory.NewService(repo)

	parser := directory.IdentityParser(directory.RawIdentity)
	if cfg.Auth.JWTSecret != "" {
		parser = directory.JWTClaimIdentity(cfg.Auth.JWTSecret, cfg.Auth.JWTClaim)
	}

	authn := directory.NewAuthenticator(dir, directory.AuthOptions{
		Header:        cfg.Auth.HeaderName,
		AutoCreate:    cfg.Auth.AutoCreate,
		ParseIdentity: parser,
	})
	adminAuthn := directory.NewAuthenticator(dir, directory.AuthOptions{
		Header:        cfg.Auth.HeaderName,
		RequiredRoles: adminRoles(cfg.Auth.AdminRoles, log),
		ParseIdentity: parser,
	})

	userHandler := handler.NewUserHandler(dir)

	// --- Authenticated routes ---
	e.GET("/me", userHandler.Me, echoauth.RequireAuth(authn))

	admin := e.Group("/users", echoauth.RequireAuth(adminAuthn))
	admin.POST("", userHandler.Create)
	admin.GET("/:key", userHandler.Get)
	admin.PUT("/:key/role", userHandler.UpdateRole)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

// adminRoles parses the configured admin role names, dropping values
// outside the enumeration with a warning.
func adminRoles(names []string, log zerolog.Logger) []domain.Role {
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		role, err := domain.ParseRole(name)
		if err != nil {
			log.Warn().Str("role", name).Msg("ignoring unknown admin role")
			continue
		}
		roles = append(roles, role)
	}
	return roles
}
