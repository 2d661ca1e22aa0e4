package config

import (
	"time"

	"github.com/ytlens/sponsorlens/internal/logger"
)

// Default configuration values.
const (
	defaultServiceName     = "sponsorlens"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8085
	defaultMaxItems        = 200
	defaultPageSize        = 50
	defaultAICallSpacing   = time.Second
	defaultProviderTimeout = 30 * time.Second
	defaultGeminiModel     = "gemini-1.5-flash"
	defaultStorageDriver   = "sqlite"
	defaultSQLitePath      = "sponsorlens.db"
	defaultCacheBackend    = "memory"
	defaultRedisAddr       = "localhost:6379"
	defaultRedisTimeout    = 5 * time.Second
	defaultCacheTTL        = 24 * time.Hour
	defaultRunRetention    = 100
)

// Config holds all configuration for the sponsorlens service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  logger.Config  `yaml:"logging"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SPONSORLENS_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"        yaml:"debug"`
}

// YouTubeConfig holds Data API settings.
type YouTubeConfig struct {
	APIKey   string `env:"YOUTUBE_API_KEY" yaml:"api_key"`
	PageSize int64  `yaml:"page_size"`
}

// GeminiConfig holds classifier provider settings.
type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY" yaml:"api_key"`
	Model   string        `env:"GEMINI_MODEL"   yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig holds run persistence settings.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string `env:"STORAGE_DRIVER" yaml:"driver"`
	SQLitePath string `env:"SQLITE_PATH"    yaml:"sqlite_path"`

	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// CacheConfig holds classifier reply cache settings.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend  string        `env:"CACHE_BACKEND"  yaml:"backend"`
	Addr     string        `env:"REDIS_ADDR"     yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database int           `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
	TTL      time.Duration `yaml:"ttl"`
}

// AnalysisConfig holds batch pipeline settings.
type AnalysisConfig struct {
	// MaxItems caps how many items one run fetches and classifies.
	MaxItems int `env:"ANALYSIS_MAX_ITEMS" yaml:"max_items"`
	// AICallSpacing is the minimum gap between consecutive Gemini calls.
	AICallSpacing time.Duration `yaml:"ai_call_spacing"`
	// RunRetention is how many finished runs the API keeps listable.
	RunRetention int `yaml:"run_retention"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)
	// Re-apply env overrides after defaults (env always wins).
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	s := &cfg.Service
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}

	if cfg.YouTube.PageSize == 0 {
		cfg.YouTube.PageSize = defaultPageSize
	}

	g := &cfg.Gemini
	if g.Model == "" {
		g.Model = defaultGeminiModel
	}
	if g.Timeout == 0 {
		g.Timeout = defaultProviderTimeout
	}

	st := &cfg.Storage
	if st.Driver == "" {
		st.Driver = defaultStorageDriver
	}
	if st.SQLitePath == "" {
		st.SQLitePath = defaultSQLitePath
	}
	if st.SSLMode == "" {
		st.SSLMode = "disable"
	}

	c := &cfg.Cache
	if c.Backend == "" {
		c.Backend = defaultCacheBackend
	}
	if c.Addr == "" {
		c.Addr = defaultRedisAddr
	}
	if c.Timeout == 0 {
		c.Timeout = defaultRedisTimeout
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}

	a := &cfg.Analysis
	if a.MaxItems == 0 {
		a.MaxItems = defaultMaxItems
	}
	if a.AICallSpacing == 0 {
		a.AICallSpacing = defaultAICallSpacing
	}
	if a.RunRetention == 0 {
		a.RunRetention = defaultRunRetention
	}
}
