package category

import "context"

// Category product category
type Category struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:200;not null"`
}

// Repository category storage
type Repository interface {
	ListAll(ctx context.Context) ([]*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, c *Category) error
}
