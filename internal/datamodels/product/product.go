package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusInStock    = "in stock"
	StatusOutOfStock = "out of stock"
)

// Product catalog item
type Product struct {
	ID        int64           `gorm:"primaryKey"`
	Name      string          `gorm:"size:100;index"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)"`
	Status    string          `gorm:"size:100"`
	Category  string          `gorm:"size:100"`
	Quantity  int64
	Images    []Image `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image uploaded product picture; Filename is relative to the upload dir
type Image struct {
	ID        int64  `gorm:"primaryKey"`
	Filename  string `gorm:"size:255;not null"`
	ProductID int64  `gorm:"index;not null"`
}

// Repository product storage
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	// Create inserts the product and its images together.
	Create(ctx context.Context, p *Product) error
	// Update saves the product columns and, when images is non-empty,
	// replaces every image row of the product, in one transaction.
	Update(ctx context.Context, p *Product, images []Image) error
	// Delete removes the product and its image rows.
	Delete(ctx context.Context, id int64) error
}
