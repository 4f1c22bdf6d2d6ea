package mq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/service"
)

func TestDecodePayment(t *testing.T) {
	in := service.PaymentMessage{
		Reference: "abc",
		UserID:    3,
		OrderID:   9,
		Status:    "paid",
		Amount:    decimal.RequireFromString("25.50"),
		Actual:    decimal.RequireFromString("25.50"),
		SettledAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	body, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodePayment(body)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.Reference)
	assert.True(t, out.Amount.Equal(in.Amount))
	assert.True(t, out.SettledAt.Equal(in.SettledAt))

	_, err = DecodePayment([]byte("{"))
	assert.Error(t, err)
}

func TestInitWithoutURL(t *testing.T) {
	assert.Nil(t, Init(&config.RabbitMQConfig{}))
}
