package main

import (
	"context"
	"fmt"
	"log"

	"plan-dashboard/internal/config"
	"plan-dashboard/internal/database"
	"plan-dashboard/internal/handlers"
	"plan-dashboard/internal/logging"
	"plan-dashboard/internal/media"
	"plan-dashboard/internal/metrics"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/seed"
	"plan-dashboard/internal/server"
	"plan-dashboard/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	gin.SetMode(gin.ReleaseMode)

	var st store.Store
	if cfg.DBDSN != "" {
		db, err := database.Open(cfg.DBDSN, logger)
		if err != nil {
			return err
		}
		st = database.NewStore(db)
	} else {
		logger.Warn("DB_DSN is not set, using the in-memory store; edits are lost on restart")
		st = store.NewMemory()
	}

	ds, err := seed.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := seed.Populate(ctx, st, ds, cfg.Today(), logger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	blobs, err := media.Open(ctx, cfg.Media)
	if err != nil {
		return err
	}
	library := media.NewLibrary(blobs, cfg.Media.MaxBytes)

	if cfg.DefaultAdminPassword {
		logger.Warn("ADMIN_PASSWORD is not set, the demo admin password is in effect")
	}
	if !cfg.ReferenceDate.IsZero() {
		logger.Info("reference date pinned", zap.String("today", planning.FormatISODate(cfg.ReferenceDate)))
	}

	classifier := planning.NewClassifier(cfg.Thresholds)
	h := handlers.New(handlers.Deps{
		Store:      st,
		Media:      library,
		Dataset:    ds,
		Classifier: classifier,
		Today:      cfg.Today,
		AdminHash:  cfg.AdminPasswordHash,
		Log:        logger,
	})
	reg := metrics.Register(metrics.NewCollector(st, classifier, cfg.Today, logger))

	r, err := server.NewRouter(cfg, h, reg, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("media_driver", string(blobs.Driver())),
		zap.Float64("at_risk_margin", cfg.Thresholds.Margin),
		zap.Float64("at_risk_ratio", cfg.Thresholds.Ratio),
	)
	return r.Run(addr)
}
