package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/payment"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/gateway"
	"github.com/example/goshop/internal/repository/mysql"
)

// Gateway remote payment provider
type Gateway interface {
	Initialize(ctx context.Context, in gateway.InitializeRequest) (*gateway.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*gateway.VerifyResponse, []byte, error)
}

// Locker short-lived mutual exclusion keyed by string. ok is false when the
// key is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// Notifier receives settled payments
type Notifier interface {
	PaymentSettled(ctx context.Context, m *PaymentMessage) error
}

// PaymentMessage event published once a payment leaves pending
type PaymentMessage struct {
	Reference string          `json:"reference"`
	UserID    int64           `json:"user_id"`
	OrderID   int64           `json:"order_id"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Actual    decimal.Decimal `json:"actual"`
	SettledAt time.Time       `json:"settled_at"`
}

type PaymentService struct {
	db          *gorm.DB
	payments    payment.Repository
	users       user.Repository
	gw          Gateway
	callbackURL string
	locker      Locker
	notifier    Notifier
}

func NewPaymentService(db *gorm.DB, payments payment.Repository, users user.Repository, gw Gateway, callbackURL string) *PaymentService {
	return &PaymentService{db: db, payments: payments, users: users, gw: gw, callbackURL: callbackURL}
}

// WithLocker serializes verification of a reference across processes.
func (s *PaymentService) WithLocker(l Locker) *PaymentService {
	s.locker = l
	return s
}

// WithNotifier publishes settled payments.
func (s *PaymentService) WithNotifier(n Notifier) *PaymentService {
	s.notifier = n
	return s
}

// Initialize opens a gateway transaction for the user's pending payment and
// returns the URL to send the browser to.
func (s *PaymentService) Initialize(ctx context.Context, userID int64, ref string) (string, error) {
	p, err := s.owned(ctx, userID, ref)
	if err != nil {
		return "", err
	}
	if p.Status != payment.StatusPending {
		return "", ErrPaymentSettled
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	resp, err := s.gw.Initialize(ctx, gateway.InitializeRequest{
		Reference:   p.Reference,
		Amount:      MinorUnits(p.Amount),
		Email:       u.Email,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		GetMonitor().RecordError(ComponentGateway)
		return "", err
	}
	return resp.Data.AuthorizationURL, nil
}

// Verify asks the gateway for the outcome of ref and reconciles it. A payment
// already out of pending is returned as is.
func (s *PaymentService) Verify(ctx context.Context, userID int64, ref string) (*payment.Payment, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "payment:verify:"+ref)
		if err != nil {
			GetMonitor().RecordError(ComponentRedis)
			zap.L().Warn("verify lock unavailable", zap.String("reference", ref), zap.Error(err))
		} else {
			if !ok {
				return nil, ErrPaymentBusy
			}
			defer release()
		}
	}

	p, err := s.owned(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	if p.Status != payment.StatusPending {
		return p, nil
	}

	resp, raw, err := s.gw.Verify(ctx, ref)
	if err != nil {
		GetMonitor().RecordError(ComponentGateway)
		return nil, err
	}
	if err := s.Reconcile(ctx, p, resp, raw); err != nil {
		return nil, err
	}
	return p, nil
}

// Reconcile applies a verification result to p. On failure the history rows
// of the checkout are dropped. The user's cart is cleared either way.
func (s *PaymentService) Reconcile(ctx context.Context, p *payment.Payment, resp *gateway.VerifyResponse, raw []byte) error {
	status := payment.StatusFailed
	if resp.Paid() {
		status = payment.StatusPaid
	}
	actual := decimal.NewFromInt(resp.Data.Amount).Div(decimal.NewFromInt(100)).Round(2)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if status == payment.StatusFailed {
			if err := mysql.NewHistoryRepository(tx).DeleteByPaymentRef(ctx, p.Reference); err != nil {
				return err
			}
		}
		res := tx.Model(&payment.Payment{}).
			Where("id = ? AND status = ?", p.ID, payment.StatusPending).
			Updates(map[string]interface{}{
				"status": status,
				"actual": decimal.NewNullDecimal(actual),
				"data":   string(raw),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentSettled
		}
		return mysql.NewCartRepository(tx).ClearByUser(ctx, p.UserID)
	})
	if err != nil {
		return err
	}

	p.Status = status
	p.Actual = decimal.NewNullDecimal(actual)
	p.Data = string(raw)
	GetMonitor().RecordPayment(status)
	zap.L().Info("payment reconciled",
		zap.String("reference", p.Reference),
		zap.Int64("user_id", p.UserID),
		zap.String("status", status),
		zap.String("actual", actual.StringFixed(2)))

	if s.notifier != nil {
		msg := &PaymentMessage{
			Reference: p.Reference,
			UserID:    p.UserID,
			OrderID:   p.OrderID,
			Status:    status,
			Amount:    p.Amount,
			Actual:    actual,
			SettledAt: time.Now(),
		}
		if err := s.notifier.PaymentSettled(ctx, msg); err != nil {
			GetMonitor().RecordError(ComponentMQ)
			zap.L().Warn("publish payment event failed", zap.String("reference", p.Reference), zap.Error(err))
		}
	}
	return nil
}

func (s *PaymentService) owned(ctx context.Context, userID int64, ref string) (*payment.Payment, error) {
	if ref == "" {
		return nil, ErrPaymentNotFound
	}
	p, err := s.payments.GetByReference(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// MinorUnits amount x 100 as an integer
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
