package user

import (
	"context"
	"time"
)

// User shop customer
type User struct {
	ID        int64  `gorm:"primaryKey"`
	FirstName string `gorm:"size:100;index;not null"`
	LastName  string `gorm:"size:100;index;not null"`
	Username  string `gorm:"size:100;index;not null"`
	Email     string `gorm:"uniqueIndex;size:100;not null"`
	Phone     string `gorm:"size:100;index;not null"`
	Password  string `gorm:"size:255;not null"` // bcrypt hash
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository user storage
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByIdentifier matches email, username or phone.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	Create(ctx context.Context, u *User) error
}
