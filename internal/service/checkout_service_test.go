package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/history"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/payment"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/gateway"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/testhelpers"
)

var dec = decimal.RequireFromString

type shopFixture struct {
	db       *gorm.DB
	cart     *CartService
	checkout *CheckoutService
	user     *user.User
	a, b     *product.Product
}

func newShopFixture(t *testing.T, perUser bool) *shopFixture {
	t.Helper()
	db := testhelpers.NewDB(t)
	return &shopFixture{
		db:       db,
		cart:     NewCartService(db, mysql.NewCartRepository(db), mysql.NewProductRepository(db), perUser),
		checkout: NewCheckoutService(db),
		user:     testhelpers.CreateUser(t, db, "ada", "ada@example.com"),
		a:        testhelpers.CreateProduct(t, db, "A", "10.00"),
		b:        testhelpers.CreateProduct(t, db, "B", "5.50"),
	}
}

// fillCart puts A x2 and B x1 in the user's cart and returns the pay form lines.
func (f *shopFixture) fillCart(t *testing.T) []PayLine {
	t.Helper()
	ctx := context.Background()
	la, err := f.cart.Add(ctx, f.user.ID, f.a.ID)
	require.NoError(t, err)
	lb, err := f.cart.Add(ctx, f.user.ID, f.b.ID)
	require.NoError(t, err)

	require.NoError(t, f.cart.UpdateCheckout(ctx, f.user.ID, []CheckoutLine{
		{CartID: la.ID, ProductID: f.a.ID, Price: dec("10.00"), Quantity: 2},
		{CartID: lb.ID, ProductID: f.b.ID, Price: dec("5.50"), Quantity: 1},
	}))
	return []PayLine{
		{CartID: la.ID, ProductID: f.a.ID, Price: dec("10.00"), Quantity: 2, Payable: dec("20.00")},
		{CartID: lb.ID, ProductID: f.b.ID, Price: dec("5.50"), Quantity: 1, Payable: dec("5.50")},
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCartAddGlobalScope(t *testing.T) {
	f := newShopFixture(t, false)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db, "bo", "bo@example.com")

	l, err := f.cart.Add(ctx, f.user.ID, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.Quantity)
	assert.True(t, l.Amount.IsZero())
	assert.True(t, l.Payable.IsZero())

	_, err = f.cart.Add(ctx, f.user.ID, f.a.ID)
	assert.ErrorIs(t, err, ErrProductInCart)
	_, err = f.cart.Add(ctx, other.ID, f.a.ID)
	assert.ErrorIs(t, err, ErrProductInCart)

	_, err = f.cart.Add(ctx, f.user.ID, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartAddPerUserScope(t *testing.T) {
	f := newShopFixture(t, true)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db, "bo", "bo@example.com")

	_, err := f.cart.Add(ctx, f.user.ID, f.a.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, other.ID, f.a.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, other.ID, f.a.ID)
	assert.ErrorIs(t, err, ErrProductInCart)
}

func TestCartRemoveChecksOwner(t *testing.T) {
	f := newShopFixture(t, false)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db, "bo", "bo@example.com")

	l, err := f.cart.Add(ctx, f.user.ID, f.a.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.cart.Remove(ctx, other.ID, l.ID), ErrCartLineNotFound)
	require.NoError(t, f.cart.Remove(ctx, f.user.ID, l.ID))
	assert.ErrorIs(t, f.cart.Remove(ctx, f.user.ID, l.ID), ErrCartLineNotFound)
}

func TestCheckoutTotal(t *testing.T) {
	f := newShopFixture(t, false)
	f.fillCart(t)

	total, err := f.cart.Total(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.50", total.StringFixed(2))
}

func TestUpdateCheckoutRejects(t *testing.T) {
	f := newShopFixture(t, false)
	ctx := context.Background()
	other := testhelpers.CreateUser(t, f.db, "bo", "bo@example.com")
	l, err := f.cart.Add(ctx, f.user.ID, f.a.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.cart.UpdateCheckout(ctx, f.user.ID, nil), ErrEmptyCheckout)
	assert.ErrorIs(t, f.cart.UpdateCheckout(ctx, f.user.ID, []CheckoutLine{
		{CartID: l.ID, ProductID: f.a.ID, Price: dec("1.00"), Quantity: 1},
	}), ErrPriceChanged)
	assert.ErrorIs(t, f.cart.UpdateCheckout(ctx, f.user.ID, []CheckoutLine{
		{CartID: l.ID, ProductID: f.b.ID, Price: dec("5.50"), Quantity: 1},
	}), ErrCartLineNotFound)
	assert.ErrorIs(t, f.cart.UpdateCheckout(ctx, other.ID, []CheckoutLine{
		{CartID: l.ID, ProductID: f.a.ID, Price: dec("10.00"), Quantity: 1},
	}), ErrCartLineNotFound)
	assert.ErrorIs(t, f.cart.UpdateCheckout(ctx, f.user.ID, []CheckoutLine{
		{CartID: l.ID, ProductID: f.a.ID, Price: dec("10.00"), Quantity: 0},
	}), ErrMalformedCheckout)
}

func TestParseCheckoutForm(t *testing.T) {
	lines, err := ParseCheckoutForm(map[string][]string{
		"cid[]":   {"1", "2"},
		"pid[]":   {"7", "8"},
		"price[]": {"10.00", "5.5"},
		"qty[]":   {"2", "1"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, CheckoutLine{CartID: 2, ProductID: 8, Price: dec("5.5"), Quantity: 1}, lines[1])

	_, err = ParseCheckoutForm(map[string][]string{"cid[]": {"1"}, "pid[]": {"7", "8"}, "price[]": {"1"}, "qty[]": {"1"}})
	assert.ErrorIs(t, err, ErrMalformedCheckout)
	_, err = ParseCheckoutForm(map[string][]string{"cid[]": {"x"}, "pid[]": {"7"}, "price[]": {"1"}, "qty[]": {"1"}})
	assert.ErrorIs(t, err, ErrMalformedCheckout)
	_, err = ParseCheckoutForm(map[string][]string{})
	assert.ErrorIs(t, err, ErrEmptyCheckout)

	_, err = ParseCheckoutForm(map[string][]string{
		"cid[]": {"1", "1"}, "pid[]": {"7", "7"}, "price[]": {"10.00", "10.00"}, "qty[]": {"2", "2"},
	})
	assert.ErrorIs(t, err, ErrMalformedCheckout)

	_, err = ParsePayForm(map[string][]string{"cid[]": {"1"}, "pid[]": {"7"}, "price[]": {"1"}, "qty[]": {"1"}})
	assert.ErrorIs(t, err, ErrMalformedCheckout)
	_, err = ParsePayForm(map[string][]string{
		"cid[]": {"1", "1"}, "pid[]": {"7", "7"}, "price[]": {"10.00", "10.00"}, "qty[]": {"2", "2"}, "payable[]": {"20.00", "20.00"},
	})
	assert.ErrorIs(t, err, ErrMalformedCheckout)
}

func TestPay(t *testing.T) {
	f := newShopFixture(t, false)
	paidAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.checkout.now = func() time.Time { return paidAt }
	lines := f.fillCart(t)

	res, err := f.checkout.Pay(context.Background(), f.user.ID, lines)
	require.NoError(t, err)

	assert.Len(t, res.Payment.Reference, 32)
	assert.NotContains(t, res.Payment.Reference, "-")
	assert.Equal(t, payment.StatusPending, res.Payment.Status)
	assert.Equal(t, "25.50", res.Payment.Amount.StringFixed(2))
	assert.Equal(t, order.StatusPending, res.Order.Status)
	assert.Equal(t, "25.50", res.Order.Total.StringFixed(2))
	assert.Len(t, res.HistoryIDs, 2)

	var rows []history.History
	require.NoError(t, f.db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, h := range rows {
		assert.Equal(t, res.Payment.Reference, h.PaymentRef)
		assert.Equal(t, "25.50", h.Total.StringFixed(2))
	}
	assert.Equal(t, "20.00", rows[0].Payable.StringFixed(2))
	assert.Equal(t, "5.50", rows[1].Payable.StringFixed(2))

	var details []order.Detail
	require.NoError(t, f.db.Where("order_id = ?", res.Order.ID).Find(&details).Error)
	assert.Len(t, details, 2)

	var stored []cart.Line
	require.NoError(t, f.db.Order("id ASC").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, "20.00", stored[0].Payable.StringFixed(2))
}

func TestPayMismatchRollsBack(t *testing.T) {
	f := newShopFixture(t, false)
	lines := f.fillCart(t)
	lines[1].Quantity = 3
	lines[1].Payable = dec("16.50")

	_, err := f.checkout.Pay(context.Background(), f.user.ID, lines)
	assert.ErrorIs(t, err, ErrCartLineMismatch)

	assert.Zero(t, countRows(t, f.db, &history.History{}))
	assert.Zero(t, countRows(t, f.db, &order.Order{}))
	assert.Zero(t, countRows(t, f.db, &payment.Payment{}))

	_, err = f.checkout.Pay(context.Background(), f.user.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyCheckout)
}

func TestPayRejectsRepeatedLine(t *testing.T) {
	f := newShopFixture(t, false)
	lines := f.fillCart(t)

	_, err := f.checkout.Pay(context.Background(), f.user.ID, []PayLine{lines[0], lines[0]})
	assert.ErrorIs(t, err, ErrMalformedCheckout)

	assert.Zero(t, countRows(t, f.db, &history.History{}))
	assert.Zero(t, countRows(t, f.db, &order.Order{}))
	assert.Zero(t, countRows(t, f.db, &order.Detail{}))
	assert.Zero(t, countRows(t, f.db, &payment.Payment{}))
}

func TestPayDetailsCoverWholeCart(t *testing.T) {
	f := newShopFixture(t, false)
	lines := f.fillCart(t)

	// only A is submitted, B stays in the cart with payable 0
	res, err := f.checkout.Pay(context.Background(), f.user.ID, lines[:1])
	require.NoError(t, err)

	assert.Len(t, res.HistoryIDs, 1)
	assert.Equal(t, int64(1), countRows(t, f.db, &history.History{}))
	assert.Equal(t, "20.00", res.Order.Total.StringFixed(2))
	assert.Equal(t, "20.00", res.Payment.Amount.StringFixed(2))

	var details []order.Detail
	require.NoError(t, f.db.Where("order_id = ?", res.Order.ID).Order("id ASC").Find(&details).Error)
	require.Len(t, details, 2)
	assert.Equal(t, f.a.ID, details[0].ProductID)
	assert.Equal(t, f.b.ID, details[1].ProductID)
}

type fakeGateway struct {
	mu          sync.Mutex
	initialized []gateway.InitializeRequest
	verifyCalls int
	verify      *gateway.VerifyResponse
	verifyErr   error
}

func (g *fakeGateway) Initialize(_ context.Context, in gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = append(g.initialized, in)
	resp := &gateway.InitializeResponse{Status: true}
	resp.Data.AuthorizationURL = "https://checkout.example/" + in.Reference
	return resp, nil
}

func (g *fakeGateway) Verify(_ context.Context, ref string) (*gateway.VerifyResponse, []byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, nil, g.verifyErr
	}
	return g.verify, []byte(`{"reference":"` + ref + `"}`), nil
}

type fakeLocker struct{ busy bool }

func (l *fakeLocker) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, !l.busy, nil
}

type recordingNotifier struct{ got []*PaymentMessage }

func (n *recordingNotifier) PaymentSettled(_ context.Context, m *PaymentMessage) error {
	n.got = append(n.got, m)
	return nil
}

func verifyResponse(paid bool, minor int64) *gateway.VerifyResponse {
	r := &gateway.VerifyResponse{Status: true}
	r.Data.Amount = minor
	r.Data.GatewayResponse = "Declined"
	if paid {
		r.Data.GatewayResponse = gateway.SuccessfulResponse
	}
	return r
}

func newPaymentFixture(t *testing.T, gw *fakeGateway) (*shopFixture, *PaymentService, *PayResult) {
	t.Helper()
	f := newShopFixture(t, false)
	res, err := f.checkout.Pay(context.Background(), f.user.ID, f.fillCart(t))
	require.NoError(t, err)
	svc := NewPaymentService(f.db, mysql.NewPaymentRepository(f.db), mysql.NewUserRepository(f.db), gw, "http://shop.local/payment/verify")
	return f, svc, res
}

func TestPaymentInitialize(t *testing.T) {
	gw := &fakeGateway{}
	f, svc, res := newPaymentFixture(t, gw)
	ref := res.Payment.Reference

	url, err := svc.Initialize(context.Background(), f.user.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/"+ref, url)
	require.Len(t, gw.initialized, 1)
	assert.Equal(t, int64(2550), gw.initialized[0].Amount)
	assert.Equal(t, "ada@example.com", gw.initialized[0].Email)
	assert.Equal(t, "http://shop.local/payment/verify", gw.initialized[0].CallbackURL)

	other := testhelpers.CreateUser(t, f.db, "bo", "bo@example.com")
	_, err = svc.Initialize(context.Background(), other.ID, ref)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	_, err = svc.Initialize(context.Background(), f.user.ID, "")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentVerifySuccess(t *testing.T) {
	gw := &fakeGateway{verify: verifyResponse(true, 2550)}
	f, svc, res := newPaymentFixture(t, gw)
	notifier := &recordingNotifier{}
	svc.WithNotifier(notifier).WithLocker(&fakeLocker{})
	ctx := context.Background()

	p, err := svc.Verify(ctx, f.user.ID, res.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, p.Status)

	stored, err := mysql.NewPaymentRepository(f.db).GetByReference(ctx, res.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, stored.Status)
	require.True(t, stored.Actual.Valid)
	assert.Equal(t, "25.50", stored.Actual.Decimal.StringFixed(2))
	assert.Contains(t, stored.Data, res.Payment.Reference)

	assert.Equal(t, int64(2), countRows(t, f.db, &history.History{}))
	assert.Zero(t, countRows(t, f.db, &cart.Line{}))
	require.Len(t, notifier.got, 1)
	assert.Equal(t, payment.StatusPaid, notifier.got[0].Status)

	// settled payments are not verified again
	p, err = svc.Verify(ctx, f.user.ID, res.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, p.Status)
	assert.Equal(t, 1, gw.verifyCalls)
	_, err = svc.Initialize(ctx, f.user.ID, res.Payment.Reference)
	assert.ErrorIs(t, err, ErrPaymentSettled)
}

func TestPaymentVerifyFailure(t *testing.T) {
	gw := &fakeGateway{verify: verifyResponse(false, 2550)}
	f, svc, res := newPaymentFixture(t, gw)
	ctx := context.Background()

	histories := mysql.NewHistoryRepository(f.db)
	before, err := histories.ListByPaymentRef(ctx, res.Payment.Reference)
	require.NoError(t, err)
	assert.Len(t, before, 2)

	p, err := svc.Verify(ctx, f.user.ID, res.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, p.Status)

	after, err := histories.ListByPaymentRef(ctx, res.Payment.Reference)
	require.NoError(t, err)
	assert.Empty(t, after)
	assert.Zero(t, countRows(t, f.db, &history.History{}))
	assert.Zero(t, countRows(t, f.db, &cart.Line{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &order.Order{}))
}

func TestPaymentVerifyGuards(t *testing.T) {
	gw := &fakeGateway{verifyErr: &gateway.Error{StatusCode: 502, Message: "upstream"}}
	f, svc, res := newPaymentFixture(t, gw)
	ctx := context.Background()
	ref := res.Payment.Reference

	_, err := svc.Verify(ctx, f.user.ID, ref)
	var gwErr *gateway.Error
	assert.ErrorAs(t, err, &gwErr)
	// nothing changed
	assert.Equal(t, int64(2), countRows(t, f.db, &history.History{}))
	assert.Equal(t, int64(2), countRows(t, f.db, &cart.Line{}))

	other := testhelpers.CreateUser(t, f.db, "bo", "bo@example.com")
	_, err = svc.Verify(ctx, other.ID, ref)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	svc.WithLocker(&fakeLocker{busy: true})
	_, err = svc.Verify(ctx, f.user.ID, ref)
	assert.ErrorIs(t, err, ErrPaymentBusy)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2550), MinorUnits(dec("25.50")))
	assert.Equal(t, int64(1), MinorUnits(dec("0.005")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}
