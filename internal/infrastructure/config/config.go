package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Eskimo    EskimoConfig
	Sync      SyncConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// EskimoConfig holds the remote EPOS API connection settings
type EskimoConfig struct {
	BaseURL        string
	Username       string
	Password       string
	LocationID     string
	RequestTimeout time.Duration // standard API calls
	MediaTimeout   time.Duration // media/image downloads
	StatusTimeout  time.Duration // status-only write-backs
	TokenTTL       time.Duration // fallback when the remote omits expires_in
	RetryCount     int
	RetryWaitTime  time.Duration
}

// SyncConfig holds synchronization engine settings
type SyncConfig struct {
	WriteBackBatchSize int           // identifier mappings per write-back call
	WriteBackDelay     time.Duration // pause between write-back batches
	LeaseTTL           time.Duration // sync lease lifetime
	CouponMode         string        // sequential or independent
	OrderExportLimit   int           // max orders per export pass
	CustomerPrefix     string        // leads exported order external identifiers
	GuestCustomerID    string        // local customer used for unresolvable order customers
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SchedulerConfig holds scheduled sync configuration
type SchedulerConfig struct {
	Enabled              bool
	CatalogCronSchedule  string
	ModifiedCronSchedule string
	OrderCronSchedule    string
	ModifiedWindowHours  int // watermark for scheduled modified-since pulls
	JobTimeout           time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ESKIMO_ prefix (e.g., ESKIMO_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ESKIMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Eskimo: EskimoConfig{
			BaseURL:        v.GetString("eskimo.base_url"),
			Username:       v.GetString("eskimo.username"),
			Password:       v.GetString("eskimo.password"),
			LocationID:     v.GetString("eskimo.location_id"),
			RequestTimeout: v.GetDuration("eskimo.request_timeout"),
			MediaTimeout:   v.GetDuration("eskimo.media_timeout"),
			StatusTimeout:  v.GetDuration("eskimo.status_timeout"),
			TokenTTL:       v.GetDuration("eskimo.token_ttl"),
			RetryCount:     v.GetInt("eskimo.retry_count"),
			RetryWaitTime:  v.GetDuration("eskimo.retry_wait_time"),
		},
		Sync: SyncConfig{
			WriteBackBatchSize: v.GetInt("sync.write_back_batch_size"),
			WriteBackDelay:     v.GetDuration("sync.write_back_delay"),
			LeaseTTL:           v.GetDuration("sync.lease_ttl"),
			CouponMode:         v.GetString("sync.coupon_mode"),
			OrderExportLimit:   v.GetInt("sync.order_export_limit"),
			CustomerPrefix:     v.GetString("sync.customer_prefix"),
			GuestCustomerID:    v.GetString("sync.guest_customer_id"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              v.GetBool("scheduler.enabled"),
			CatalogCronSchedule:  v.GetString("scheduler.catalog_cron_schedule"),
			ModifiedCronSchedule: v.GetString("scheduler.modified_cron_schedule"),
			OrderCronSchedule:    v.GetString("scheduler.order_cron_schedule"),
			ModifiedWindowHours:  v.GetInt("scheduler.modified_window_hours"),
			JobTimeout:           v.GetDuration("scheduler.job_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "eskimo-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "eskimo_sync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Eskimo.RequestTimeout == 0 {
		cfg.Eskimo.RequestTimeout = 60 * time.Second
	}
	if cfg.Eskimo.MediaTimeout == 0 {
		cfg.Eskimo.MediaTimeout = 12 * time.Second
	}
	if cfg.Eskimo.StatusTimeout == 0 {
		cfg.Eskimo.StatusTimeout = 10 * time.Second
	}
	if cfg.Eskimo.TokenTTL == 0 {
		cfg.Eskimo.TokenTTL = 1440 * time.Second
	}
	if cfg.Eskimo.RetryCount == 0 {
		cfg.Eskimo.RetryCount = 2
	}
	if cfg.Eskimo.RetryWaitTime == 0 {
		cfg.Eskimo.RetryWaitTime = 2 * time.Second
	}
	if cfg.Sync.WriteBackBatchSize == 0 {
		cfg.Sync.WriteBackBatchSize = 25
	}
	if cfg.Sync.WriteBackDelay == 0 {
		cfg.Sync.WriteBackDelay = 6 * time.Second
	}
	if cfg.Sync.LeaseTTL == 0 {
		cfg.Sync.LeaseTTL = 30 * time.Minute
	}
	if cfg.Sync.CouponMode == "" {
		cfg.Sync.CouponMode = "sequential"
	}
	if cfg.Sync.OrderExportLimit == 0 {
		cfg.Sync.OrderExportLimit = 25
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Sync passes against a slow remote can run long
		cfg.HTTP.WriteTimeout = 120 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.CatalogCronSchedule == "" {
		cfg.Scheduler.CatalogCronSchedule = "0 2 * * *"
	}
	if cfg.Scheduler.ModifiedCronSchedule == "" {
		cfg.Scheduler.ModifiedCronSchedule = "*/30 * * * *"
	}
	if cfg.Scheduler.OrderCronSchedule == "" {
		cfg.Scheduler.OrderCronSchedule = "*/15 * * * *"
	}
	if cfg.Scheduler.ModifiedWindowHours == 0 {
		cfg.Scheduler.ModifiedWindowHours = 1
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Sync.CouponMode {
	case "sequential", "independent":
	default:
		return fmt.Errorf("sync.coupon_mode must be 'sequential' or 'independent', got %q", c.Sync.CouponMode)
	}

	if c.App.Env == "production" {
		if c.Eskimo.BaseURL == "" {
			return fmt.Errorf("eskimo.base_url is required in production")
		}
		if c.Eskimo.Username == "" || c.Eskimo.Password == "" {
			return fmt.Errorf("eskimo.username and eskimo.password are required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
