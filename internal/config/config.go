package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverDuckDB   = "duckdb"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	AI            AIConfig
	ObjectStore   ObjectStoreConfig
	Export        ExportConfig
	Seed          SeedConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	MaxResultRows   int
}

type AIConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ExportConfig struct {
	Enabled bool
}

type SeedConfig struct {
	Restaurants   int
	Customers     int
	Orders        int
	Reviews       int
	DateRangeDays int
	RandomSeed    int64
	Reset         bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

// LoadFromEnv reads an optional dotenv file (MENULENS_ENV_FILE, default .env)
// into the process environment without overriding variables already set,
// then loads the configuration from the environment.
func LoadFromEnv(serviceName string) (Config, error) {
	envFile := ".env"
	if raw, ok := os.LookupEnv("MENULENS_ENV_FILE"); ok {
		envFile = strings.TrimSpace(raw)
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %q: %w", envFile, err)
		}
	}
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("MENULENS_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid MENULENS_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	// Older deployments read the Gemini key from GOOGLE_AI_API_KEY.
	if err := applyString(lookup, "GOOGLE_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "MENULENS_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "MENULENS_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "MENULENS_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "MENULENS_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "MENULENS_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },

		func() error { return applyString(lookup, "MENULENS_DB_DRIVER", &cfg.Store.Driver) },
		func() error { return applyString(lookup, "MENULENS_DB_DSN", &cfg.Store.DSN) },
		func() error { return applyInt(lookup, "MENULENS_DB_MAX_OPEN_CONNS", &cfg.Store.MaxOpenConns) },
		func() error { return applyInt(lookup, "MENULENS_DB_MAX_IDLE_CONNS", &cfg.Store.MaxIdleConns) },
		func() error { return applyDuration(lookup, "MENULENS_DB_CONN_MAX_IDLE_TIME", &cfg.Store.ConnMaxIdleTime) },
		func() error { return applyDuration(lookup, "MENULENS_DB_CONN_MAX_LIFETIME", &cfg.Store.ConnMaxLifetime) },
		func() error { return applyDuration(lookup, "MENULENS_QUERY_TIMEOUT", &cfg.Store.QueryTimeout) },
		func() error { return applyInt(lookup, "MENULENS_MAX_RESULT_ROWS", &cfg.Store.MaxResultRows) },

		func() error { return applyString(lookup, "MENULENS_AI_PROVIDER", &cfg.AI.Provider) },
		func() error { return applyString(lookup, "MENULENS_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "MENULENS_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "MENULENS_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "MENULENS_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyInt(lookup, "MENULENS_AI_MAX_TOKENS", &cfg.AI.MaxTokens) },
		func() error { return applyDuration(lookup, "MENULENS_AI_TIMEOUT", &cfg.AI.Timeout) },

		func() error { return applyString(lookup, "MENULENS_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "MENULENS_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "MENULENS_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error { return applyString(lookup, "MENULENS_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID) },
		func() error { return applyString(lookup, "MENULENS_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey) },
		func() error { return applyBool(lookup, "MENULENS_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "MENULENS_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error {
			return applyBool(lookup, "MENULENS_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)
		},
		func() error { return applyBool(lookup, "MENULENS_EXPORT_ENABLED", &cfg.Export.Enabled) },

		func() error { return applyInt(lookup, "MENULENS_SEED_RESTAURANTS", &cfg.Seed.Restaurants) },
		func() error { return applyInt(lookup, "MENULENS_SEED_CUSTOMERS", &cfg.Seed.Customers) },
		func() error { return applyInt(lookup, "MENULENS_SEED_ORDERS", &cfg.Seed.Orders) },
		func() error { return applyInt(lookup, "MENULENS_SEED_REVIEWS", &cfg.Seed.Reviews) },
		func() error { return applyInt(lookup, "MENULENS_SEED_DATE_RANGE_DAYS", &cfg.Seed.DateRangeDays) },
		func() error { return applyInt64(lookup, "MENULENS_SEED_RANDOM_SEED", &cfg.Seed.RandomSeed) },
		func() error { return applyBool(lookup, "MENULENS_SEED_RESET", &cfg.Seed.Reset) },

		func() error { return applyStringList(lookup, "MENULENS_CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins) },
		func() error { return applyBool(lookup, "MENULENS_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "MENULENS_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyBool(lookup, "MENULENS_AUTH_REQUIRED", &cfg.Auth.Required) },
		func() error { return applyString(lookup, "MENULENS_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = askWriteBudget(cfg)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("http address is required")
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverDuckDB:
	default:
		return fmt.Errorf("invalid MENULENS_DB_DRIVER: %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Store.MaxResultRows < 0 {
		return fmt.Errorf("invalid MENULENS_MAX_RESULT_ROWS: must be >= 0")
	}
	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("invalid MENULENS_AI_PROVIDER: %q", c.AI.Provider)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("invalid MENULENS_AI_TEMPERATURE: %v", c.AI.Temperature)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("invalid MENULENS_AI_MAX_TOKENS: must be > 0")
	}
	if c.Seed.Restaurants < 1 || c.Seed.Restaurants > 10 {
		return fmt.Errorf("invalid MENULENS_SEED_RESTAURANTS: must be between 1 and 10")
	}
	if c.Seed.Customers < 1 || c.Seed.Orders < 0 || c.Seed.Reviews < 0 {
		return fmt.Errorf("seed counts must be positive")
	}
	if c.Seed.Reviews > 0 && c.Seed.Orders == 0 {
		return fmt.Errorf("seed reviews require at least one order")
	}
	if c.Seed.DateRangeDays < 1 {
		return fmt.Errorf("invalid MENULENS_SEED_DATE_RANGE_DAYS: must be > 0")
	}
	return nil
}

// askWriteBudget covers one ask request: SQL generation, execution, the insight
// and related-question calls, plus slack for encoding and export.
func askWriteBudget(cfg Config) time.Duration {
	return 3*cfg.AI.Timeout + cfg.Store.QueryTimeout + 15*time.Second
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "menulens-api"},
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  5 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver:          DriverSQLite,
			DSN:             "restaurant_analytics.db",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    15 * time.Second,
		},
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-1.5-pro",
			Temperature: 0.1,
			MaxTokens:   1000,
			Timeout:     30 * time.Second,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "menulens",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			AutoCreateBucket: true,
		},
		Seed: SeedConfig{
			Restaurants:   5,
			Customers:     100,
			Orders:        500,
			Reviews:       200,
			DateRangeDays: 180,
			RandomSeed:    42,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18000"
		cfg.Store.DSN = "file:menulens_test?mode=memory&cache=shared"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
		cfg.CORS.AllowedOrigins = nil
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyStringList(lookup LookupFunc, key string, dst *[]string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	*dst = values
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
