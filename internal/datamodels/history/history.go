package history

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/product"
)

// History audit row for one purchased line
type History struct {
	ID         int64           `gorm:"primaryKey"`
	ProductID  int64           `gorm:"index;not null"`
	UserID     int64           `gorm:"index;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Quantity   int64           `gorm:"not null;default:0"`
	Payable    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PaymentRef string          `gorm:"size:200;index"`
	Date       time.Time       `gorm:"index"`
	Product    product.Product `gorm:"foreignKey:ProductID"`
}

func (History) TableName() string { return "history" }

// Repository history storage
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*History, error)
	ListByPaymentRef(ctx context.Context, ref string) ([]*History, error)
	// DeleteByPaymentRef drops every row of one checkout.
	DeleteByPaymentRef(ctx context.Context, ref string) error
}
