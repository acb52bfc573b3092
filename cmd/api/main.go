// @title Clinic Referrals API
// @version 1.0
// @description Clientes, referidos y recompensas de la clínica veterinaria.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-referrals/internal/adapters/auth/odin"
	"clinic-referrals/internal/adapters/capabilities/plansfeatures"
	pg "clinic-referrals/internal/adapters/storage/postgres"
	"clinic-referrals/internal/config"
	"clinic-referrals/internal/jobs"
	"clinic-referrals/internal/platform/logger"
	"clinic-referrals/internal/platform/metrics"
	"clinic-referrals/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
		File:   cfg.LogFile,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	opts := router.Options{
		StaffCapability: cfg.StaffCapability,
		Logger:          log,
		Metrics:         metrics.New(""),
	}

	// Postgres si hay DSN; si no, in-memory (dev).
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.DBMigrate {
			if err := pg.Migrate(db); err != nil {
				return err
			}
			log.Info("migrations applied", nil)
		}
		opts.DB = db
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	if cfg.AuthMode == config.AuthModeOdin {
		c, err := odin.NewClient(odin.Config{BaseURL: cfg.OdinBaseURL, APIKey: cfg.OdinAPIKey})
		if err != nil {
			return err
		}
		opts.AuthVerifier = odin.NewVerifier(c)
	} else {
		log.Warn("AUTH_MODE=dev, X-Debug-User-ID is trusted", nil)
	}

	if cfg.PlansConfigured() {
		c, err := plansfeatures.NewClient(plansfeatures.Config{BaseURL: cfg.PlansBaseURL, APIKey: cfg.PlansAPIKey})
		if err != nil {
			return err
		}
		opts.Capabilities = plansfeatures.NewResolver(c, plansfeatures.ResolverOptions{})
	}

	app := router.New(opts)

	var job *jobs.RewardsReconcile
	if cfg.RewardsReconcileCron != "" {
		j, err := jobs.NewRewardsReconcile(cfg.RewardsReconcileCron, app.Rewards, log)
		if err != nil {
			return err
		}
		job = j
		job.Start()
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("starting server", map[string]any{"addr": cfg.Addr, "env": cfg.Env, "storage": storageName(opts.DB)})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if job != nil {
		job.Stop(ctx)
	}
	return srv.Shutdown(ctx)
}

func storageName(db *sql.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}
