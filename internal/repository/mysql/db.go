package mysql

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/admin"
	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/history"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/payment"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init opens the global GORM instance and migrates the schema
func Init(cfg *config.DatabaseConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(Dialector(cfg.DSN), &gorm.Config{})
		if err != nil {
			zap.L().Fatal("failed to connect database", zap.Error(err))
		}
		if err = Migrate(db); err != nil {
			zap.L().Fatal("auto migrate failed", zap.Error(err))
		}
	})
	return db
}

// Dialector picks the driver from the DSN shape.
func Dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return mysql.Open(dsn)
}

// Migrate creates or updates every table the shop uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&admin.Admin{},
		&user.User{},
		&category.Category{},
		&product.Product{},
		&product.Image{},
		&cart.Line{},
		&order.Order{},
		&order.Detail{},
		&payment.Payment{},
		&history.History{},
	)
}
