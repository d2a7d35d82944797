// Package app 组装两个进程共用的依赖：日志、数据库、限流、服务与路由模块
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"gin-gorm-market/internal/core/auth"
	"gin-gorm-market/internal/core/config"
	"gin-gorm-market/internal/core/database"
	"gin-gorm-market/internal/core/logger"
	"gin-gorm-market/internal/core/ratelimit"
	"gin-gorm-market/internal/core/server"
	"gin-gorm-market/internal/repo"
	"gin-gorm-market/internal/service"
	"gin-gorm-market/internal/transport/http/handler"
	"gin-gorm-market/internal/transport/http/router"
)

type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	JWT     *auth.JWTer
	Limiter ratelimit.Limiter

	closers []func()
}

func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	return logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: cfg.App.Env == "local",
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

var openDB = database.NewGorm

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// New 打开数据库、按需迁移、创建限流器，并把 handler 模块注册到路由
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := openDB(database.Opts{
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

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	a := &App{
		Cfg: cfg,
		Log: log,
		DB:  db,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}
	a.Limiter = a.newLimiter()

	users, err := repo.NewUserRepo(db)
	if err != nil {
		a.Close()
		return nil, err
	}
	products := repo.NewProductRepo(db)
	ledger := repo.NewEngagementRepo(db)

	pageMax := cfg.Market.PageSizeMax
	router.Register(
		handler.Market{
			Moderation: service.NewModerationService(products, cfg.Market.CascadePolicy(), pageMax, log),
			Engagement: service.NewEngagementService(products, ledger, log),
		},
		handler.Profile{
			Profiles: service.NewProfileService(users, cfg.Market.Policy(), pageMax, log),
		},
	)
	log.Info("protected field policy loaded",
		zap.String("version", cfg.Market.ProtectedFields.Version),
		zap.Bool("match_subtree", cfg.Market.ProtectedFields.MatchSubtree),
		zap.Int("fields", len(cfg.Market.ProtectedFields.Fields)))
	return a, nil
}

// newLimiter 配置了 redis 用固定窗口，多实例共享；否则退回进程内令牌桶
func (a *App) newLimiter() ratelimit.Limiter {
	rl := a.Cfg.RateLimit
	if rl.UserMax <= 0 {
		return nil
	}
	window := time.Duration(rl.UserWindowSec) * time.Second
	if a.Cfg.Redis.Addr != "" {
		w := ratelimit.NewRedisWindow(a.Cfg.Redis.Addr, a.Cfg.Redis.Password, a.Cfg.Redis.DB, window, int64(rl.UserMax))
		a.closers = append(a.closers, func() { _ = w.Close() })
		a.Log.Info("mutation rate limit", zap.String("backend", "redis"), zap.String("addr", a.Cfg.Redis.Addr))
		return w
	}
	if window <= 0 {
		window = time.Minute
	}
	a.Log.Info("mutation rate limit", zap.String("backend", "local"))
	return ratelimit.NewLocal(rate.Every(window/time.Duration(rl.UserMax)), rl.UserMax)
}

func (a *App) Options() router.Options { return router.OptionsFrom(a.Cfg, a.Limiter) }

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	closeDB(a.DB)
}

// Serve 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅关闭
func (a *App) Serve(name, host string, port int, h http.Handler) {
	hc := a.Cfg.App.HTTP
	addr := server.Addr(host, port)
	srv := server.BuildServer(addr, h,
		time.Duration(hc.ReadTimeoutSec)*time.Second,
		time.Duration(hc.WriteTimeoutSec)*time.Second,
		time.Duration(hc.IdleTimeoutSec)*time.Second,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatal(name+" start failed", zap.Error(err))
		}
	}()
	a.Log.Info(name+" started", zap.String("addr", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	a.Log.Info(name + " stopped gracefully")
}
