package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

var defaultCategories = []string{"Electronics", "Fashion", "Groceries", "Home", "Books"}

func main() {
	configDir := flag.String("config", "./config", "directory holding config.yaml")
	names := flag.String("names", strings.Join(defaultCategories, ","), "comma separated category names")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	l := logger.MustInit(&cfg.Log)
	defer func() { _ = l.Sync() }()

	svc := service.NewCategoryService(mysql.NewCategoryRepository(mysql.Init(&cfg.Database)))

	ctx := context.Background()
	for _, name := range strings.Split(*names, ",") {
		created, err := svc.Ensure(ctx, name)
		if err != nil {
			zap.L().Fatal("seed category failed", zap.String("name", name), zap.Error(err))
		}
		if created {
			zap.L().Info("category created", zap.String("name", strings.TrimSpace(name)))
		}
	}
}
