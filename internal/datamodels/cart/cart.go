package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/product"
)

// Line one pending (product, user) purchase intent. Amount and Quantity are
// filled at checkout, Payable at pay time.
type Line struct {
	ID        int64           `gorm:"primaryKey"`
	ProductID int64           `gorm:"index;not null"`
	UserID    int64           `gorm:"index;not null"`
	Quantity  int64           `gorm:"not null;default:0"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Payable   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Product   product.Product `gorm:"foreignKey:ProductID"`
}

func (Line) TableName() string { return "carts" }

// Repository cart storage
type Repository interface {
	// ExistsForProduct reports whether any user has the product in a cart.
	ExistsForProduct(ctx context.Context, productID int64) (bool, error)
	ExistsForUserProduct(ctx context.Context, userID, productID int64) (bool, error)
	Create(ctx context.Context, l *Line) error
	// ListByUser returns the user's lines with their product loaded.
	ListByUser(ctx context.Context, userID int64) ([]*Line, error)
	// Delete removes line id if it belongs to userID.
	Delete(ctx context.Context, id, userID int64) (bool, error)
	ClearByUser(ctx context.Context, userID int64) error
}
