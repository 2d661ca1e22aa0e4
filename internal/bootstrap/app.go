// Package bootstrap assembles the service from configuration: classifiers,
// cache, storage, data provider, run manager, and HTTP surface.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ytlens/sponsorlens/internal/api"
	"github.com/ytlens/sponsorlens/internal/cache"
	"github.com/ytlens/sponsorlens/internal/classifier"
	"github.com/ytlens/sponsorlens/internal/config"
	"github.com/ytlens/sponsorlens/internal/gemini"
	"github.com/ytlens/sponsorlens/internal/httpserver"
	"github.com/ytlens/sponsorlens/internal/logger"
	"github.com/ytlens/sponsorlens/internal/processor"
	"github.com/ytlens/sponsorlens/internal/runs"
	"github.com/ytlens/sponsorlens/internal/storage"
	"github.com/ytlens/sponsorlens/internal/telemetry"
	"github.com/ytlens/sponsorlens/internal/youtube"
)

var startTime = time.Now()

// Components holds everything a service entry point needs.
type Components struct {
	Config    *config.Config
	Logger    logger.Logger
	Telemetry *telemetry.Provider
	DB        *sqlx.DB
	Repo      *storage.RunsRepository
	Heuristic *classifier.Heuristic
	AI        *classifier.AI
	Gemini    *gemini.Client
	Provider  *youtube.Client
	Manager   *runs.Manager
	Engine    *gin.Engine
}

// LoadConfig loads configuration from CONFIG_PATH or ./config.yml;
// a missing file falls back to defaults plus environment overrides.
func LoadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}
	return config.Load(path)
}

// CreateLogger creates the service logger from configuration.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// NewComponents builds the full component graph. Gemini and persistence
// are optional: without GEMINI_API_KEY only heuristic runs work, and
// without a reachable database runs live in memory only. The YouTube key
// is required.
//
// ctx bounds the lifetime of background runs; cancel it on shutdown.
func NewComponents(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	tel := telemetry.NewProvider()

	provider, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, cfg.YouTube.PageSize, tel, log)
	if err != nil {
		return nil, fmt.Errorf("setup youtube client: %w", err)
	}

	comps := &Components{
		Config:    cfg,
		Logger:    log,
		Telemetry: tel,
		Provider:  provider,
		Heuristic: classifier.NewHeuristic(log),
	}

	replyCache, err := setupCache(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Gemini.APIKey != "" {
		comps.Gemini, err = gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("setup gemini client: %w", err)
		}
		comps.AI = classifier.NewAI(comps.Gemini, replyCache, tel, log)
	} else {
		log.Warn("GEMINI_API_KEY not set, AI classification disabled")
	}

	comps.DB, err = storage.Open(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	comps.Repo = storage.NewRunsRepository(comps.DB)

	limiter := processor.NewRateLimiter(cfg.Analysis.AICallSpacing, log)
	orchestrator := processor.NewOrchestrator(comps.Heuristic, comps.AI, limiter, tel, log)

	comps.Manager = runs.NewManager(ctx, provider, orchestrator, comps.Repo, tel, log, runs.Options{
		MaxItems:  cfg.Analysis.MaxItems,
		Retention: cfg.Analysis.RunRetention,
	})

	comps.Engine = buildEngine(comps)
	return comps, nil
}

// Close releases held resources.
func (c *Components) Close() {
	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			c.Logger.Warn("close gemini client", logger.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("close database", logger.Error(err))
		}
	}
	_ = c.Logger.Sync()
}

func setupCache(cfg *config.Config, log logger.Logger) (cache.ReplyCache, error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemory(), nil
	}

	redisCache, err := cache.NewRedis(cache.RedisConfig{
		Address:  cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.Database,
		Timeout:  cfg.Cache.Timeout,
		TTL:      cfg.Cache.TTL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("setup redis cache: %w", err)
	}
	return redisCache, nil
}

func buildEngine(c *Components) *gin.Engine {
	engine := httpserver.NewEngine(httpserver.Config{
		Debug: c.Config.Service.Debug,
	}, c.Logger)

	httpserver.RegisterHealthRoutes(engine, httpserver.HealthOptions{
		ServiceName:    c.Config.Service.Name,
		ServiceVersion: c.Config.Service.Version,
		StartTime:      startTime,
		Checks: map[string]httpserver.HealthChecker{
			"database": func() httpserver.CheckResult {
				if err := c.DB.Ping(); err != nil {
					return httpserver.CheckResult{Status: httpserver.HealthStatusUnhealthy, Message: err.Error()}
				}
				return httpserver.CheckResult{Status: httpserver.HealthStatusHealthy}
			},
		},
	})

	handler := api.NewHandler(c.Manager, c.Heuristic, c.AI, c.Repo, c.Logger)
	api.SetupRoutes(engine, handler, c.Telemetry)
	return engine
}
