package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gin-gorm-market/internal/app"
	"gin-gorm-market/internal/core/config"
	"gin-gorm-market/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := app.NewLogger(cfg)
	defer cleanup()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	r := router.NewAdminEngine(log, a.JWT, a.Options())
	a.Serve("moderation admin", cfg.App.Admin.Host, cfg.App.Admin.Port, r)
}
