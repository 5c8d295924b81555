package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
}

type AuthConfig struct {
	// HeaderName is the primary identity header read per request.
	HeaderName string `env:"AUTH_HEADER,      default=X-User-Email"`
	// AutoCreate provisions unknown identities on first sight.
	AutoCreate bool `env:"AUTH_AUTO_CREATE, default=false"`
	// AdminRoles guard the mutating admin endpoints.
	AdminRoles []string `env:"AUTH_ADMIN_ROLES, default=admin"`
	// JWTSecret enables verified bearer-token identities when set.
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	// JWTClaim is the token claim holding the lookup key.
	JWTClaim string `env:"AUTH_JWT_CLAIM,   default=email"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=user_directory"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
