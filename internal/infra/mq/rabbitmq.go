package mq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
)

var (
	conn *amqp.Connection
	once sync.Once
)

// Init dials RabbitMQ. It returns nil when no URL is configured.
func Init(cfg *config.RabbitMQConfig) *amqp.Connection {
	if cfg.URL == "" {
		return nil
	}
	once.Do(func() {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			zap.L().Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		conn = c
	})
	return conn
}

// Conn returns the connection opened by Init
func Conn() *amqp.Connection {
	return conn
}

// DeclareQueue declares the durable queue payment events go through.
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}
