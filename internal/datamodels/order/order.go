package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/product"
)

const (
	StatusPending = "0"
	StatusPaid    = "1"
)

// Order one pay action
type Order struct {
	ID        int64           `gorm:"primaryKey"`
	Status    string          `gorm:"size:1;index;not null;default:'0'"`
	UserID    int64           `gorm:"index;not null"`
	Date      time.Time       `gorm:"index"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2)"`
	Details   []Detail        `gorm:"foreignKey:OrderID"`
}

// Detail one purchased line of an order
type Detail struct {
	ID        int64           `gorm:"primaryKey"`
	ProductID int64           `gorm:"index;not null"`
	OrderID   int64           `gorm:"index;not null"`
	Product   product.Product `gorm:"foreignKey:ProductID"`
}

func (Detail) TableName() string { return "order_details" }

// Repository order storage
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
}
