package redis

import (
	"sync"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
)

var (
	client radix.Client
	once   sync.Once
)

// Init opens the Redis pool. It returns nil when no address is configured.
func Init(cfg *config.RedisConfig) radix.Client {
	if cfg.Addr == "" {
		return nil
	}
	once.Do(func() {
		pool, err := radix.NewPool("tcp", cfg.Addr, 10)
		if err != nil {
			zap.L().Fatal("failed to connect redis", zap.String("addr", cfg.Addr), zap.Error(err))
		}
		client = pool
	})
	return client
}

// Client returns the pool opened by Init
func Client() radix.Client {
	return client
}
