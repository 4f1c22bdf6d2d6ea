package admin

import (
	"context"
	"time"
)

// Admin back-office principal
type Admin struct {
	ID        int64  `gorm:"primaryKey"`
	Username  string `gorm:"size:100;index"`
	Email     string `gorm:"uniqueIndex;size:100;not null"`
	Phone     string `gorm:"size:100;index"`
	Password  string `gorm:"size:200;not null"` // bcrypt hash
	CreatedAt time.Time
}

// Repository admin storage
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	// GetByIdentifier matches email, username or phone.
	GetByIdentifier(ctx context.Context, identifier string) (*Admin, error)
	Create(ctx context.Context, a *Admin) error
}
