package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/history"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/payment"
)

// PayLine one submitted row of the pay form
type PayLine struct {
	CartID    int64
	ProductID int64
	Price     decimal.Decimal
	Quantity  int64
	Payable   decimal.Decimal
}

// PayResult rows written by Pay
type PayResult struct {
	Order      *order.Order
	Payment    *payment.Payment
	HistoryIDs []int64
}

type CheckoutService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{db: db, now: time.Now}
}

// NewReference random payment reference, 32 hex chars
func NewReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Pay turns the submitted cart lines into history rows, an order with its
// details and a pending payment, all in one transaction.
func (s *CheckoutService) Pay(ctx context.Context, userID int64, lines []PayLine) (*PayResult, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCheckout
	}
	seen := make(map[int64]bool, len(lines))
	for _, in := range lines {
		if seen[in.CartID] {
			return nil, ErrMalformedCheckout
		}
		seen[in.CartID] = true
	}
	ref := NewReference()
	now := s.now()
	res := &PayResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range lines {
			var l cart.Line
			err := tx.Where("id = ? AND product_id = ? AND user_id = ?", in.CartID, in.ProductID, userID).
				First(&l).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartLineNotFound
			}
			if err != nil {
				return err
			}
			payable := in.Price.Mul(decimal.NewFromInt(in.Quantity)).Round(2)
			if !l.Amount.Equal(in.Price) || l.Quantity != in.Quantity || !payable.Equal(in.Payable.Round(2)) {
				return ErrCartLineMismatch
			}
			if err := tx.Model(&cart.Line{}).Where("id = ?", l.ID).Update("payable", payable).Error; err != nil {
				return err
			}
			h := &history.History{
				ProductID:  in.ProductID,
				UserID:     userID,
				Price:      in.Price,
				Quantity:   in.Quantity,
				Payable:    payable,
				Total:      decimal.Zero,
				PaymentRef: ref,
				Date:       now,
			}
			if err := tx.Omit("Product").Create(h).Error; err != nil {
				return err
			}
			res.HistoryIDs = append(res.HistoryIDs, h.ID)
		}

		o := &order.Order{Status: order.StatusPending, UserID: userID, Date: now, Total: decimal.Zero}
		if err := tx.Omit("Details").Create(o).Error; err != nil {
			return err
		}

		var remaining []*cart.Line
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&remaining).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for _, l := range remaining {
			total = total.Add(l.Payable)
			d := &order.Detail{ProductID: l.ProductID, OrderID: o.ID}
			if err := tx.Omit("Product").Create(d).Error; err != nil {
				return err
			}
		}
		total = total.Round(2)

		if err := tx.Model(o).Update("total", total).Error; err != nil {
			return err
		}
		o.Total = total
		if err := tx.Model(&history.History{}).Where("payment_ref = ?", ref).Update("total", total).Error; err != nil {
			return err
		}

		p := &payment.Payment{
			UserID:    userID,
			OrderID:   o.ID,
			Amount:    total,
			Reference: ref,
			Status:    payment.StatusPending,
			Date:      now,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		res.Order = o
		res.Payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	GetMonitor().RecordCheckout()
	zap.L().Info("checkout created",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", res.Order.ID),
		zap.String("reference", ref),
		zap.String("total", res.Order.Total.StringFixed(2)))
	return res, nil
}

// ParsePayForm zips the cid[], pid[], price[], qty[] and payable[] form arrays.
func ParsePayForm(form map[string][]string) ([]PayLine, error) {
	base, err := ParseCheckoutForm(form)
	if err != nil {
		return nil, err
	}
	payables := form["payable[]"]
	if len(payables) != len(base) {
		return nil, ErrMalformedCheckout
	}
	lines := make([]PayLine, 0, len(base))
	for i, b := range base {
		payable, err := decimal.NewFromString(payables[i])
		if err != nil {
			return nil, ErrMalformedCheckout
		}
		lines = append(lines, PayLine{
			CartID:    b.CartID,
			ProductID: b.ProductID,
			Price:     b.Price,
			Quantity:  b.Quantity,
			Payable:   payable,
		})
	}
	return lines, nil
}

