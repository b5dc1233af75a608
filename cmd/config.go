package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DatabaseConfig locates the PostgreSQL database.
type DatabaseConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// Config configures the delivery API server.
type Config struct {
	DatabaseConfig

	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"deliverytracker"`

	RedisURL string        `envconfig:"REDIS_URL"`
	LockTTL  time.Duration `envconfig:"LOCK_TTL" default:"30s"`

	ProofDir      string `envconfig:"PROOF_DIR" default:"./data/proofs"`
	MaxImageBytes int64  `envconfig:"MAX_IMAGE_BYTES" default:"10485760"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// DSN builds the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}

// AgentConfig configures the courier agent.
type AgentConfig struct {
	APIURL   string `envconfig:"AGENT_API_URL" required:"true"`
	APIToken string `envconfig:"AGENT_API_TOKEN" required:"true"`

	StorePath     string        `envconfig:"AGENT_STORE_PATH" default:"./data/proofs.db"`
	ListenAddr    string        `envconfig:"AGENT_LISTEN_ADDR" default:"127.0.0.1:8081"`
	UploadTimeout time.Duration `envconfig:"AGENT_UPLOAD_TIMEOUT" default:"30s"`
	ProbeTimeout  time.Duration `envconfig:"AGENT_PROBE_TIMEOUT" default:"3s"`
	MaxImageBytes int64         `envconfig:"AGENT_MAX_IMAGE_BYTES" default:"10485760"`

	WatchSchedule string `envconfig:"AGENT_WATCH_SCHEDULE" default:"@every 5s"`
	SweepSchedule string `envconfig:"AGENT_SWEEP_SCHEDULE" default:"@every 1m"`
	BoardSchedule string `envconfig:"AGENT_BOARD_SCHEDULE" default:"@every 30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	loadDotEnv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.MaxImageBytes <= 0 {
		return Config{}, errors.New("MAX_IMAGE_BYTES must be positive")
	}
	return cfg, nil
}

// LoadDatabaseConfig reads only the database settings, for tools that do not
// serve the API.
func LoadDatabaseConfig() (DatabaseConfig, error) {
	loadDotEnv()

	var cfg DatabaseConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("parsing database config: %w", err)
	}
	return cfg, nil
}

// LoadAgentConfig reads .env when present, then the environment.
func LoadAgentConfig() (AgentConfig, error) {
	loadDotEnv()

	var cfg AgentConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AgentConfig{}, fmt.Errorf("parsing agent config: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return AgentConfig{}, fmt.Errorf("AGENT_API_URL: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() {
	// A missing .env is normal outside development.
	_ = godotenv.Load(".env")
}
