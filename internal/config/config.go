package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment override, e.g. TWSTOCK_SERVER_PORT.
const EnvPrefix = "TWSTOCK"

// ConfigFileEnv names a config file explicitly, bypassing the search locations.
const ConfigFileEnv = "TWSTOCK_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Query     QueryConfig     `yaml:"query" envconfig:"QUERY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// Debug disables browser caching of frontend assets and logs a startup banner.
	Debug bool `yaml:"debug" envconfig:"DEBUG"`
}

// SetDefaults implements defaults.Setter.
func (s *ServerConfig) SetDefaults() {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8000
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 15 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60 * time.Second
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = 20 * time.Second
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = 1 << 20
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 30 * time.Second
	}
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// SetDefaults implements defaults.Setter. Defaults are applied to a fresh
// Config before the file and environment overrides, so boolean defaults are
// assigned unconditionally.
func (s *SecurityConfig) SetDefaults() {
	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = []string{"*"}
	}
	s.EnableCORS = true
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// SetDefaults implements defaults.Setter.
func (r *RateLimitConfig) SetDefaults() {
	if r.RPS == 0 {
		r.RPS = 100
	}
	if r.Burst == 0 {
		r.Burst = 50
	}
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SetDefaults implements defaults.Setter.
func (l *LoggingConfig) SetDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
	if l.Output == "" {
		l.Output = "console"
	}
	if l.FilePath == "" {
		l.FilePath = "logs/app.log"
	}
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir; empty StockDir and DailyDir default to
// subdirectories of DataDir.
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR"`
	StockDir  string `yaml:"stock_dir" envconfig:"STOCK_DIR"`
	DailyDir  string `yaml:"daily_dir" envconfig:"DAILY_DIR"`
	StaticDir string `yaml:"static_dir" envconfig:"STATIC_DIR"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// SetDefaults implements defaults.Setter.
func (p *PathsConfig) SetDefaults() {
	if p.DataDir == "" {
		p.DataDir = DefaultDataDir
	}
	if p.StaticDir == "" {
		p.StaticDir = DefaultStaticDir
	}
	if p.LogsDir == "" {
		p.LogsDir = DefaultLogsDir
	}
}

// TelemetryConfig controls tracing and metrics export.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// SetDefaults implements defaults.Setter.
func (t *TelemetryConfig) SetDefaults() {
	if t.ServiceName == "" {
		t.ServiceName = ServiceName
	}
	if t.Environment == "" {
		t.Environment = "development"
	}
	t.EnableMetrics = true
	if t.TraceExporter == "" {
		t.TraceExporter = "stdout"
	}
	if t.MetricExporter == "" {
		t.MetricExporter = "prometheus"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

// QueryConfig holds request defaults and limits of the query API.
type QueryConfig struct {
	DefaultLimit     int `yaml:"default_limit" envconfig:"DEFAULT_LIMIT"`
	DefaultStatsDays int `yaml:"default_stats_days" envconfig:"DEFAULT_STATS_DAYS"`
	DefaultRankLimit int `yaml:"default_rank_limit" envconfig:"DEFAULT_RANK_LIMIT"`
	MaxLimit         int `yaml:"max_limit" envconfig:"MAX_LIMIT"`
	// BatchConcurrency bounds the number of files compare and summary load at once.
	BatchConcurrency int `yaml:"batch_concurrency" envconfig:"BATCH_CONCURRENCY"`
	MaxBatchIDs      int `yaml:"max_batch_ids" envconfig:"MAX_BATCH_IDS"`
}

// SetDefaults implements defaults.Setter.
func (q *QueryConfig) SetDefaults() {
	if q.DefaultLimit == 0 {
		q.DefaultLimit = DefaultHistoryLimit
	}
	if q.DefaultStatsDays == 0 {
		q.DefaultStatsDays = DefaultStatsDays
	}
	if q.DefaultRankLimit == 0 {
		q.DefaultRankLimit = DefaultRankLimit
	}
	if q.MaxLimit == 0 {
		q.MaxLimit = 5000
	}
	if q.BatchConcurrency == 0 {
		q.BatchConcurrency = 4
	}
	if q.MaxBatchIDs == 0 {
		q.MaxBatchIDs = 100
	}
}

// Load loads configuration from defaults, the config file if one is found
// and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	// Logs are always JSON
	c.Logging.Format = "json"

	if c.Query.DefaultLimit <= 0 || c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("query default limit must be in 1..%d", c.Query.MaxLimit)
	}

	if c.Query.BatchConcurrency <= 0 {
		return fmt.Errorf("query batch concurrency must be positive")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be in [0, 1]")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	var cfg Config
	// Setter-only defaults cannot fail
	_ = defaults.Set(&cfg)
	return &cfg
}
