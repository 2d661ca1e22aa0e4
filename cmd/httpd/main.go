// Command httpd serves the sponsorship analysis API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ytlens/sponsorlens/internal/bootstrap"
	"github.com/ytlens/sponsorlens/internal/httpserver"
	"github.com/ytlens/sponsorlens/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Printf("httpd: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLog, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := bootstrap.NewComponents(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer comps.Close()

	appLog.Info("service configured",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("ai_enabled", comps.AI != nil),
	)

	return httpserver.Run(ctx, httpserver.Config{
		Address: fmt.Sprintf(":%d", cfg.Service.Port),
		Debug:   cfg.Service.Debug,
	}, comps.Engine, appLog)
}
