package main

import (
	"flag"
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/server"
)

func main() {
	configDir := flag.String("config", "./config", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	l := logger.MustInit(&cfg.Log)
	defer func() { _ = l.Sync() }()

	app := server.NewAdminApp(cfg, server.InitDeps(cfg))

	addr := cfg.AdminServer.Addr()
	zap.L().Info("admin server listening", zap.String("addr", addr))
	if err := app.Listen(addr, iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		zap.L().Fatal("admin server stopped", zap.Error(err))
	}
}
