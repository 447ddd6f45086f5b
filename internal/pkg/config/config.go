package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Server configures cmd/server.
type Server struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	// AuthRateLimit is the sustained requests/second allowed per client IP on
	// /signup and /login.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT, default=5"`
	AuditWorkers  int     `env:"AUDIT_WORKERS,   default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

// Client configures cmd/careclient.
type Client struct {
	APIURL       string        `env:"CARE_API_URL,       default=http://localhost:8080"`
	PollInterval time.Duration `env:"CARE_POLL_INTERVAL, default=10s"`
	HTTPTimeout  time.Duration `env:"CARE_HTTP_TIMEOUT,  default=0s"`
	LogLevel     string        `env:"LOG_LEVEL,          default=warn"`

	// DeviceID namespaces the session tiers so several installs can share
	// one Redis. Empty means the hostname.
	DeviceID    string        `env:"CARE_DEVICE_ID"`
	SessionTTL  time.Duration `env:"CARE_SESSION_TTL,  default=12h"`
	RememberTTL time.Duration `env:"CARE_REMEMBER_TTL, default=720h"`

	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=careconnect"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// LoadServer reads the server configuration from the environment, after
// loading a .env file if one is present.
func LoadServer(ctx context.Context) (*Server, error) {
	var cfg Server
	if err := load(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient reads the client configuration the same way as LoadServer.
func LoadClient(ctx context.Context) (*Client, error) {
	var cfg Client
	if err := load(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(ctx context.Context, cfg any) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return process(ctx, cfg, envconfig.OsLookuper())
}

func process(ctx context.Context, cfg any, lookuper envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: cfg, Lookuper: lookuper}); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
