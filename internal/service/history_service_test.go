package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/datamodels/payment"
	"github.com/example/goshop/internal/repository/mysql"
)

func TestTimeSince(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{90 * 24 * time.Hour, "3 months ago"},
		{365 * 24 * time.Hour, "1 year ago"},
		{800 * 24 * time.Hour, "2 years ago"},
		{-time.Hour, "just now"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeSince(now.Add(-tc.ago), now), tc.ago.String())
	}
}

func TestHistoryAndOrderListings(t *testing.T) {
	f := newShopFixture(t, false)
	paidAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.checkout.now = func() time.Time { return paidAt }
	res, err := f.checkout.Pay(context.Background(), f.user.ID, f.fillCart(t))
	require.NoError(t, err)

	hist := NewHistoryService(mysql.NewHistoryRepository(f.db))
	hist.now = func() time.Time { return paidAt.Add(72 * time.Hour) }
	entries, err := hist.List(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// same date, newest id first
	assert.Equal(t, f.b.ID, entries[0].ProductID)
	assert.Equal(t, "B", entries[0].Product.Name)
	assert.Equal(t, "3 days ago", entries[0].Since)

	orders := NewOrderService(mysql.NewOrderRepository(f.db), mysql.NewPaymentRepository(f.db))
	views, err := orders.ListByUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Len(t, views[0].Details, 2)
	require.NotNil(t, views[0].Payment)
	assert.Equal(t, res.Payment.Reference, views[0].Payment.Reference)
	assert.Equal(t, payment.StatusPending, views[0].Payment.Status)

	recent, err := orders.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
