// Package main is the entry point for the render pipeline viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/config"
	"github.com/Faultbox/custom-rp/internal/logger"
	"github.com/Faultbox/custom-rp/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Custom RP Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	world, err := viewer.BuildWorld(cfg.Scene)
	if err != nil {
		logger.Error("failed to build world", zap.Error(err))
		os.Exit(1)
	}

	if cfg.Window.Headless {
		if _, err := viewer.RunHeadless(cfg, world); err != nil {
			logger.Error("headless run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	v, err := viewer.New(cfg, world)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
