package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"go-gin-auth-service/internal/app"
	"go-gin-auth-service/internal/core/config"
	"go-gin-auth-service/internal/core/logger"
	"go-gin-auth-service/internal/core/server"
	"go-gin-auth-service/internal/transport/http/router"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, flush := app.NewLogger(cfg.Log)
	defer flush()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}()

	r := router.NewAPIEngine(router.APIDeps{
		Log:      log,
		Auth:     a.Auth,
		Metrics:  a.Metrics,
		Gatherer: a.Registry,
		Ready:    a.Ready,
		Limits:   app.Limits(cfg.App.HTTP),
		AppName:  cfg.App.Name,
		Env:      cfg.App.Env,
		DBDriver: cfg.DB.Driver,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	rt, wt, it := cfg.App.HTTP.Timeouts()
	srv := server.BuildServer(addr, r, rt, wt, it)
	srv.ErrorLog = logger.ToStdLogger(log, zapcore.WarnLevel)

	host := cfg.App.HTTP.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	baseURL := fmt.Sprintf("http://%s:%d", host, cfg.App.HTTP.Port)
	log.Info("auth api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("token", baseURL+"/auth/token"),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(gctx, srv, log, 10*time.Second) })
	g.Go(func() error { return a.Reaper.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Error("auth api stopped with error", zap.Error(err))
		return
	}
	log.Info("auth api stopped gracefully")
}
