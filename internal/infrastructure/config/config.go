package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Page fetcher modes
const (
	FetcherBridge    = "bridge"
	FetcherInProcess = "inprocess"
)

// Signer providers
const (
	SignerBrowser = "browser"
	SignerCommand = "command"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Sync      SyncConfig
	Bridge    BridgeConfig
	TikTok    TikTokConfig
	Signer    SignerConfig
	Scheduler SchedulerConfig
	Archive   ArchiveConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
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

// RedisConfig holds Redis connection settings.
// When disabled, sync locks are held in process.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// SyncConfig holds sync pipeline settings
type SyncConfig struct {
	PageSize          int
	MaxPage           int
	RequestsPerMinute int // 0 disables pacing
	LockTTL           time.Duration
	Fetcher           string // bridge or inprocess
}

// BridgeConfig holds settings for both sides of the bridge process
type BridgeConfig struct {
	Command     string
	Args        []string
	IdleTimeout time.Duration
	Timeout     time.Duration
}

// TikTokConfig holds vendor transport settings
type TikTokConfig struct {
	UserAgent     string
	SecChUa       string
	TimezoneName  string
	SignerVersion string
	Timeout       time.Duration
}

// SignerConfig selects how X-Bogus and X-Gnarly tokens are produced
type SignerConfig struct {
	Provider     string // browser or command
	ScriptPath   string
	ChromeURL    string
	NoSandbox    bool
	BogusCommand string
	GnarlyCmd    string
	Timeout      time.Duration
}

// SchedulerConfig holds the daily sync trigger configuration
type SchedulerConfig struct {
	Enabled      bool
	Interval     time.Duration
	LookbackDays int
	JobTimeout   time.Duration
}

// ArchiveConfig holds raw page archive settings. Empty bucket disables archiving.
type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold (default: 200ms)
	// Metrics options
	MetricsExportInterval time.Duration // OTLP metrics push interval (default: 60s)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SELLERPULSE_ prefix (e.g., SELLERPULSE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SELLERPULSE")
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
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Sync: SyncConfig{
			PageSize:          v.GetInt("sync.page_size"),
			MaxPage:           v.GetInt("sync.max_page"),
			RequestsPerMinute: v.GetInt("sync.requests_per_minute"),
			LockTTL:           v.GetDuration("sync.lock_ttl"),
			Fetcher:           v.GetString("sync.fetcher"),
		},
		Bridge: BridgeConfig{
			Command:     v.GetString("bridge.command"),
			Args:        v.GetStringSlice("bridge.args"),
			IdleTimeout: v.GetDuration("bridge.idle_timeout"),
			Timeout:     v.GetDuration("bridge.timeout"),
		},
		TikTok: TikTokConfig{
			UserAgent:     v.GetString("tiktok.user_agent"),
			SecChUa:       v.GetString("tiktok.sec_ch_ua"),
			TimezoneName:  v.GetString("tiktok.timezone_name"),
			SignerVersion: v.GetString("tiktok.signer_version"),
			Timeout:       v.GetDuration("tiktok.timeout"),
		},
		Signer: SignerConfig{
			Provider:     v.GetString("signer.provider"),
			ScriptPath:   v.GetString("signer.script_path"),
			ChromeURL:    v.GetString("signer.chrome_url"),
			NoSandbox:    v.GetBool("signer.no_sandbox"),
			BogusCommand: v.GetString("signer.bogus_command"),
			GnarlyCmd:    v.GetString("signer.gnarly_command"),
			Timeout:      v.GetDuration("signer.timeout"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      v.GetBool("scheduler.enabled"),
			Interval:     v.GetDuration("scheduler.interval"),
			LookbackDays: v.GetInt("scheduler.lookback_days"),
			JobTimeout:   v.GetDuration("scheduler.job_timeout"),
		},
		Archive: ArchiveConfig{
			Bucket:          v.GetString("archive.bucket"),
			Region:          v.GetString("archive.region"),
			Endpoint:        v.GetString("archive.endpoint"),
			AccessKeyID:     v.GetString("archive.access_key_id"),
			SecretAccessKey: v.GetString("archive.secret_access_key"),
			UsePathStyle:    v.GetBool("archive.use_path_style"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),

			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),
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
		cfg.App.Name = "sellerpulse"
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
		cfg.Database.DBName = "sellerpulse"
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
	// a sync request runs the whole range before responding
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 10 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 64 << 10
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 50
	}
	if cfg.Sync.MaxPage == 0 {
		cfg.Sync.MaxPage = 100
	}
	if cfg.Sync.LockTTL == 0 {
		cfg.Sync.LockTTL = 30 * time.Minute
	}
	if cfg.Sync.Fetcher == "" {
		cfg.Sync.Fetcher = FetcherBridge
	}
	if cfg.Bridge.Command == "" {
		cfg.Bridge.Command = "bridge"
	}
	if cfg.Bridge.IdleTimeout == 0 {
		cfg.Bridge.IdleTimeout = 5 * time.Second
	}
	if cfg.Bridge.Timeout == 0 {
		cfg.Bridge.Timeout = 45 * time.Second
	}
	if cfg.TikTok.SignerVersion == "" {
		cfg.TikTok.SignerVersion = "5.1.1"
	}
	if cfg.TikTok.TimezoneName == "" {
		cfg.TikTok.TimezoneName = "America/Los_Angeles"
	}
	if cfg.TikTok.Timeout == 0 {
		cfg.TikTok.Timeout = 30 * time.Second
	}
	if cfg.Signer.Provider == "" {
		cfg.Signer.Provider = SignerBrowser
	}
	if cfg.Signer.Timeout == 0 {
		cfg.Signer.Timeout = 10 * time.Second
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = 24 * time.Hour
	}
	if cfg.Scheduler.LookbackDays == 0 {
		cfg.Scheduler.LookbackDays = 1
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "us-east-1"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "sellerpulse"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.MetricsExportInterval == 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
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

	if c.Sync.PageSize < 0 || c.Sync.MaxPage < 0 {
		return fmt.Errorf("sync.page_size and sync.max_page must be positive")
	}
	if c.Sync.RequestsPerMinute < 0 {
		return fmt.Errorf("sync.requests_per_minute cannot be negative")
	}
	switch c.Sync.Fetcher {
	case FetcherBridge, FetcherInProcess:
	default:
		return fmt.Errorf("sync.fetcher must be %q or %q, got %q", FetcherBridge, FetcherInProcess, c.Sync.Fetcher)
	}
	switch c.Signer.Provider {
	case SignerBrowser, SignerCommand:
	default:
		return fmt.Errorf("signer.provider must be %q or %q, got %q", SignerBrowser, SignerCommand, c.Signer.Provider)
	}
	if c.Scheduler.LookbackDays < 0 {
		return fmt.Errorf("scheduler.lookback_days cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
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

// Addr returns the host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RequestInterval returns the pacing interval between page requests, 0 when unpaced
func (s *SyncConfig) RequestInterval() time.Duration {
	if s.RequestsPerMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(s.RequestsPerMinute)
}
