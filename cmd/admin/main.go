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

	"go-gin-auth-service/internal/app"
	"go-gin-auth-service/internal/core/config"
	"go-gin-auth-service/internal/core/logger"
	"go-gin-auth-service/internal/core/server"
	"go-gin-auth-service/internal/service"
	"go-gin-auth-service/internal/transport/http/router"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	mint := flag.String("mint", "", "issue a token for this user's email, print it and exit")
	ttl := flag.Duration("ttl", 0, "lifetime of the minted token (default jwt.access_token_ttl_min)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, flush := app.NewLogger(cfg.Log)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	if *mint != "" {
		var opts []service.IssueOption
		if *ttl > 0 {
			opts = append(opts, service.WithTTL(*ttl))
		}
		tok, err := a.Admin.MintToken(ctx, *mint, opts...)
		if err != nil {
			log.Error("mint token", zap.String("email", *mint), zap.Error(err))
			flush()
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	r := router.NewAdminEngine(router.AdminDeps{
		Log:      log.Named("admin-http"),
		Auth:     a.Auth,
		Admin:    a.Admin,
		Reaper:   a.Reaper,
		Metrics:  a.Metrics,
		Gatherer: a.Registry,
		Ready:    a.Ready,
		Limits:   app.Limits(cfg.App.Admin),
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	rt, wt, it := cfg.App.Admin.Timeouts()
	srv := server.BuildServer(addr, r, rt, wt, it)
	srv.ErrorLog = logger.ToStdLogger(log, zapcore.WarnLevel)
	log.Info("admin api starting", zap.String("addr", addr), zap.String("admin_v1", "/admin/v1"))

	if err := server.Serve(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin api stopped with error", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
