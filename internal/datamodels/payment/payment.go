package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// Payment gateway transaction for one order
type Payment struct {
	ID        int64           `gorm:"primaryKey"`
	UserID    int64           `gorm:"index;not null"`
	OrderID   int64           `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2)"`
	Reference string          `gorm:"uniqueIndex;size:200;not null"`
	Status    string          `gorm:"size:16;index;not null;default:'pending'"`
	// Actual is the amount the gateway reported on verification.
	Actual decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	// Data is the raw verification payload.
	Data      string    `gorm:"type:text"`
	Date      time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Repository payment storage
type Repository interface {
	GetByReference(ctx context.Context, ref string) (*Payment, error)
	GetByOrderIDs(ctx context.Context, orderIDs []int64) ([]*Payment, error)
}
