package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Firestore FirestoreConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL, default=30m"`
	BcryptCost     int           `env:"BCRYPT_COST,      default=10"`
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=parental_control"`
}

type FirestoreConfig struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
}

// RedisConfig configures the login throttle. An empty Addr disables it.
type RedisConfig struct {
	Addr             string        `env:"REDIS_ADDR"`
	Password         string        `env:"REDIS_PASSWORD"`
	DB               int           `env:"REDIS_DB,           default=0"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type HTTPConfig struct {
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS"`
	EnableMetrics    bool     `env:"METRICS_ENABLED, default=true"`
	EnableSwagger    bool     `env:"SWAGGER_ENABLED, default=true"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds a Config from the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}

	switch c.Store.Backend {
	case BackendMongo, BackendFirestore, BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Store.Backend == BackendFirestore && c.Firestore.ProjectID == "" && c.Firestore.CredentialsPath == "" {
		return errors.New("config: firestore needs FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_PATH")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
