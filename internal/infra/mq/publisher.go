package mq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/goshop/internal/service"
)

// Publisher sends settled payments to a queue
type Publisher struct {
	conn  *amqp.Connection
	queue string
}

func NewPublisher(conn *amqp.Connection, queue string) *Publisher {
	return &Publisher{conn: conn, queue: queue}
}

// PaymentSettled publishes m as a persistent JSON message.
func (p *Publisher) PaymentSettled(ctx context.Context, m *service.PaymentMessage) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queue); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    m.Reference,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// DecodePayment parses a delivery body.
func DecodePayment(body []byte) (*service.PaymentMessage, error) {
	var m service.PaymentMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
