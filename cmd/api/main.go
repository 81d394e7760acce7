package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyilmaz/community-backend/internal/api"
	"github.com/dyilmaz/community-backend/internal/auth"
	"github.com/dyilmaz/community-backend/internal/config"
	"github.com/dyilmaz/community-backend/internal/dashboard"
	"github.com/dyilmaz/community-backend/internal/db"
	"github.com/dyilmaz/community-backend/internal/logger"
	"github.com/dyilmaz/community-backend/internal/metrics"
	"github.com/dyilmaz/community-backend/internal/repository/postgres"
	"github.com/dyilmaz/community-backend/internal/services"
	"github.com/dyilmaz/community-backend/internal/storage"
	"github.com/dyilmaz/community-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("migrations", "err", err)
		os.Exit(1)
	}

	// Country reference data gates readiness: profile forms depend on it,
	// so a failed seed aborts startup rather than limping along.
	if err := db.SeedCountries(ctx, pool, cfg.CountriesPath); err != nil {
		log.Error("seed countries", "err", err)
		os.Exit(1)
	}

	photos, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Error("photo store", "err", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL, cfg.RememberTTL)
	userSvc := services.NewUserService(repos.Users, repos.AuditLogs, wp)
	profileSvc := services.NewProfileService(repos.Profiles, repos.AuditLogs, photos, wp)

	metrics.Init()
	r := api.NewRouter(api.Deps{
		Cfg:       cfg,
		Users:     userSvc,
		Profiles:  profileSvc,
		Countries: repos.Countries,
		TM:        tm,
	})

	dash := dashboard.New(cfg.DashboardCSV)
	dash.StartRefresh(wp, time.Hour, ctx.Done())
	handler := dashboard.Mount(r, dash)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
