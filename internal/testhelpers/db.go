// Package testhelpers provides an in-memory database and fixtures for
// service and repository tests.
package testhelpers

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository/mysql"
)

// NewDB returns a migrated SQLite database that lives for the test.
//
// The pool is pinned to one connection so the in-memory database is shared by
// every query; code under test must use the transaction handle inside
// Transaction callbacks or it will block.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.Migrate(db))
	return db
}

// CreateUser inserts a user whose password is "secret".
func CreateUser(t *testing.T, db *gorm.DB, username, email string) *user.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &user.User{
		FirstName: "Test",
		LastName:  "User",
		Username:  username,
		Email:     email,
		Phone:     "08012345678",
		Password:  string(hash),
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// CreateProduct inserts an in-stock product.
func CreateProduct(t *testing.T, db *gorm.DB, name, price string) *product.Product {
	t.Helper()

	p := &product.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Status:   product.StatusInStock,
		Category: "General",
		Quantity: 10,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(p).Error)
	return p
}
