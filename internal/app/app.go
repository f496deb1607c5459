// Package app wires the service graph shared by the api and admin binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-auth-service/internal/core/auth"
	"go-gin-auth-service/internal/core/cache"
	"go-gin-auth-service/internal/core/config"
	"go-gin-auth-service/internal/core/database"
	"go-gin-auth-service/internal/core/logger"
	"go-gin-auth-service/internal/core/metrics"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/events"
	"go-gin-auth-service/internal/repo"
	"go-gin-auth-service/internal/service"
	"go-gin-auth-service/internal/transport/http/router"
)

type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Auth   *service.AuthService
	Admin  *service.AdminService
	Reaper *service.Reaper

	closers []func() error
}

// NewLogger builds the process logger from the log section.
func NewLogger(c config.Log) (*zap.Logger, func()) {
	if c.File.Enable {
		return logger.NewWithRotate(c.Level, c.JSON, logger.FileRotate{
			Filename:   c.File.Filename,
			MaxSizeMB:  c.File.MaxSizeMB,
			MaxBackups: c.File.MaxBackups,
			MaxAgeDays: c.File.MaxAgeDays,
			Compress:   c.File.Compress,
		})
	}
	return logger.New(c.Level, c.JSON)
}

// New opens the database, migrates when configured and builds the services.
// Redis and AMQP are optional; when they are configured but unreachable the
// app starts without them and logs a warning.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	a := &App{Cfg: cfg, Log: log, DB: db}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	if cfg.DB.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(repo.Models()...); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	users := repo.NewUserRepo(db)
	var tokens domain.TokenRepository = repo.NewTokenRepo(db)
	if c := a.redis(ctx); c != nil {
		tokens = repo.NewCachedTokenRepo(tokens, c, cfg.Redis.TokenCacheTTL(), log)
	}
	pub := a.publisher()

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		Leeway: cfg.JWT.Leeway(),
	}
	tokSvc := service.NewTokenService(tokens, jwter, cfg.JWT.AccessTTL())
	creds := service.NewBcryptCredentials(cfg.Security.BcryptCost)

	a.Auth = service.NewAuthService(users, creds, tokSvc, pub, a.Metrics, log.Named("auth"))
	a.Admin = service.NewAdminService(users, tokens, tokSvc, pub, log.Named("admin"))
	a.Reaper = service.NewReaper(tokens, service.ReaperOpts{
		Interval:     cfg.Reaper.Interval(),
		Retention:    cfg.Reaper.Retention(),
		SweepTimeout: cfg.Reaper.SweepTimeout(),
	}, pub, a.Metrics, log.Named("reaper"))
	return a, nil
}

func (a *App) redis(ctx context.Context) *cache.Cache {
	rc := a.Cfg.Redis
	if !rc.Enabled() {
		return nil
	}
	c := cache.New(rc.Addr, rc.Password, rc.DB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		a.Log.Warn("redis unreachable, token cache disabled", zap.String("addr", rc.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	a.closers = append(a.closers, c.Close)
	a.Log.Info("token cache enabled", zap.String("addr", rc.Addr), zap.Duration("ttl", rc.TokenCacheTTL()))
	return c
}

func (a *App) publisher() events.Publisher {
	ec := a.Cfg.Events
	if !ec.Enabled() {
		return events.Nop{}
	}
	p, err := events.DialAMQP(ec.AMQPURL, ec.Queue, a.Log.Named("events"))
	if err != nil {
		a.Log.Warn("amqp unreachable, events disabled", zap.Error(err))
		return events.Nop{}
	}
	a.closers = append(a.closers, p.Close)
	a.Log.Info("publishing events", zap.String("queue", ec.Queue))
	return p
}

// Ready reports whether the database answers.
func (a *App) Ready(ctx context.Context) error { return database.Ping(ctx, a.DB) }

// Limits converts an http section into router guards.
func Limits(h config.HTTP) router.Limits {
	return router.Limits{
		MaxConcurrency: h.MaxConcurrency,
		MaxBodyBytes:   h.MaxBodyBytes,
		RequestTimeout: h.RequestTimeout(),
	}
}

// Close releases everything New opened, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
