package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/history"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/payment"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
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

	conn := mq.Init(&cfg.RabbitMQ)
	if conn == nil {
		zap.L().Fatal("rabbitmq.url is required for the payment worker")
	}
	defer conn.Close()

	db := mysql.Init(&cfg.Database)
	repos := &receiptRepos{
		payments:  mysql.NewPaymentRepository(db),
		orders:    mysql.NewOrderRepository(db),
		histories: mysql.NewHistoryRepository(db),
	}

	ch, err := conn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if err := mq.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// manual ack
	msgs, err := ch.Consume(cfg.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("payment worker started", zap.String("queue", cfg.RabbitMQ.Queue))
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("payment worker stopping")
			return
		case d, ok := <-msgs:
			if !ok {
				zap.L().Warn("delivery channel closed")
				return
			}
			handleMessage(ctx, repos, d)
		}
	}
}

// receiptRepos storage the worker reads a settled checkout from
type receiptRepos struct {
	payments  payment.Repository
	orders    order.Repository
	histories history.Repository
}

func handleMessage(ctx context.Context, repos *receiptRepos, d amqp.Delivery) {
	m, err := mq.DecodePayment(d.Body)
	if err != nil {
		zap.L().Warn("invalid payment message", zap.Error(err))
		service.GetMonitor().RecordWorkerFailed()
		// malformed, drop it
		_ = d.Nack(false, false)
		return
	}

	p, err := repos.payments.GetByReference(ctx, m.Reference)
	if err != nil {
		zap.L().Error("load payment failed", zap.String("reference", m.Reference), zap.Error(err))
		requeue(d)
		return
	}
	o, err := repos.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		zap.L().Error("load order failed", zap.String("reference", m.Reference), zap.Int64("order_id", p.OrderID), zap.Error(err))
		requeue(d)
		return
	}
	lines, err := repos.histories.ListByPaymentRef(ctx, m.Reference)
	if err != nil {
		zap.L().Error("load history failed", zap.String("reference", m.Reference), zap.Error(err))
		requeue(d)
		return
	}

	if p.Status != m.Status {
		zap.L().Warn("payment event does not match stored status",
			zap.String("reference", m.Reference),
			zap.String("event_status", m.Status),
			zap.String("stored_status", p.Status))
	}

	zap.L().Info("payment settled",
		zap.String("reference", m.Reference),
		zap.Int64("user_id", m.UserID),
		zap.Int64("order_id", o.ID),
		zap.Int("order_items", len(o.Details)),
		zap.Int("history_lines", len(lines)),
		zap.String("status", m.Status),
		zap.String("amount", m.Amount.StringFixed(2)),
		zap.String("actual", m.Actual.StringFixed(2)))
	service.GetMonitor().RecordWorkerProcessed()

	if err := d.Ack(false); err != nil {
		zap.L().Error("failed to ack message", zap.Error(err))
	}
}

func requeue(d amqp.Delivery) {
	service.GetMonitor().RecordError(service.ComponentDB)
	service.GetMonitor().RecordWorkerFailed()
	_ = d.Nack(false, true)
}
