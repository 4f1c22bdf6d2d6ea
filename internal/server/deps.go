package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/gateway"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/infra/storage"
	"github.com/example/goshop/internal/repository/mysql"
)

const verifyLockTTL = 30 * time.Second

// InitDeps connects the database and the optional Redis and RabbitMQ
// backends. Missing optional backends leave Locker or Notifier nil.
func InitDeps(cfg *config.Config) Deps {
	deps := Deps{
		DB:      mysql.Init(&cfg.Database),
		Gateway: gateway.NewClient(&cfg.Gateway),
		Images:  storage.NewDisk(cfg.Upload.Dir),
	}

	if client := redis.Init(&cfg.Redis); client != nil {
		deps.Locker = redis.NewLocker(client, verifyLockTTL)
	} else {
		zap.L().Info("redis not configured, payment verification runs unlocked")
	}

	if conn := mq.Init(&cfg.RabbitMQ); conn != nil {
		deps.Notifier = mq.NewPublisher(conn, cfg.RabbitMQ.Queue)
	} else {
		zap.L().Info("rabbitmq not configured, payment events disabled")
	}
	return deps
}
