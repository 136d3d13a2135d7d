package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	HTTP      HTTPConfig
	Store     StoreConfig
	Auth      AuthConfig
	Bootstrap BootstrapConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Port            string        `env:"PORT" env-default:"5000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type StoreConfig struct {
	// Backend is mongo or memory. memory keeps nothing across restarts.
	Backend  string `env:"STORE_BACKEND" env-default:"mongo"`
	MongoURI string `env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" env-default:"club"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" env-default:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"10"`
}

type BootstrapConfig struct {
	AdminID       string `env:"BOOTSTRAP_ADMIN_ID" env-default:"brahmastra01"`
	AdminName     string `env:"BOOTSTRAP_ADMIN_NAME" env-default:"Admin User"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

type RedisConfig struct {
	// URL enables the shared token revocation list, e.g. redis://:pass@host:6379/0.
	URL string `env:"REDIS_URL"`
}

type AMQPConfig struct {
	// URL enables domain event publishing.
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" env-default:"club.events"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads envFile (if it exists) into the environment and then parses the
// environment. Variables already set take precedence over the file.
func Load(envFile string) (Config, error) {
	var cfg Config
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.HTTP.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.HTTP.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendMongo:
		if u, err := url.Parse(c.Store.MongoURI); err != nil {
			problems = append(problems, fmt.Sprintf("invalid MONGODB_URI: %v", err))
		} else if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
			problems = append(problems, fmt.Sprintf("invalid MONGODB_URI scheme '%s': must be mongodb or mongodb+srv", u.Scheme))
		}
		if c.Store.Database == "" {
			problems = append(problems, "MONGODB_DATABASE cannot be empty")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be mongo or memory", c.Store.Backend))
	}

	if len(c.Auth.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be positive", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		problems = append(problems, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.Auth.BcryptCost))
	}

	if strings.TrimSpace(c.Bootstrap.AdminID) == "" {
		problems = append(problems, "BOOTSTRAP_ADMIN_ID cannot be empty")
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.Log.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.HTTP.Port
}
