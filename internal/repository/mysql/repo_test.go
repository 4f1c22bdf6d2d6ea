package mysql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/admin"
	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/history"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	repo "github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/testhelpers"
)

func TestDialector(t *testing.T) {
	_, isPG := repo.Dialector("postgres://u:p@localhost:5432/shop").(*postgres.Dialector)
	assert.True(t, isPG)
	_, isPG = repo.Dialector("postgresql://u:p@localhost/shop").(*postgres.Dialector)
	assert.True(t, isPG)
	_, isMy := repo.Dialector("u:p@tcp(127.0.0.1:3306)/shop").(*mysql.Dialector)
	assert.True(t, isMy)
}

func TestAdminRepo_GetByIdentifier(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewAdminRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &admin.Admin{
		Username: "root", Email: "root@shop.test", Phone: "08011112222", Password: "x",
	}))

	for _, ident := range []string{"root", "root@shop.test", "08011112222"} {
		a, err := r.GetByIdentifier(ctx, ident)
		require.NoError(t, err, ident)
		assert.Equal(t, "root", a.Username)
	}

	_, err := r.GetByIdentifier(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepo_DeleteChecksOwner(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewCartRepository(db)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, db, "alice", "alice@shop.test")
	bob := testhelpers.CreateUser(t, db, "bob", "bob@shop.test")
	p := testhelpers.CreateProduct(t, db, "Lamp", "12.50")

	line := &cart.Line{ProductID: p.ID, UserID: alice.ID}
	require.NoError(t, r.Create(ctx, line))

	deleted, err := r.Delete(ctx, line.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	exists, err := r.ExistsForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err = r.Delete(ctx, line.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err = r.ExistsForUserProduct(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCartRepo_ListByUserLoadsProduct(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewCartRepository(db)
	ctx := context.Background()

	u := testhelpers.CreateUser(t, db, "alice", "alice@shop.test")
	p := testhelpers.CreateProduct(t, db, "Lamp", "12.50")
	require.NoError(t, r.Create(ctx, &cart.Line{ProductID: p.ID, UserID: u.ID}))

	lines, err := r.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Lamp", lines[0].Product.Name)
	assert.True(t, lines[0].Amount.IsZero())
	assert.EqualValues(t, 0, lines[0].Quantity)
}

func TestProductRepo_UpdateReplacesImages(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewProductRepository(db)
	ctx := context.Background()

	p := testhelpers.CreateProduct(t, db, "Chair", "40.00")
	require.NoError(t, r.Update(ctx, p, []product.Image{{Filename: "a.jpg"}, {Filename: "b.png"}}))

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 2)

	p.Quantity = 3
	require.NoError(t, r.Update(ctx, p, []product.Image{{Filename: "c.jpeg"}}))
	got, err = r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.Quantity)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "c.jpeg", got.Images[0].Filename)

	// no images keeps the stored ones
	got.Status = product.StatusOutOfStock
	require.NoError(t, r.Update(ctx, got, nil))
	got, err = r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.StatusOutOfStock, got.Status)
	assert.Len(t, got.Images, 1)

	require.NoError(t, r.Delete(ctx, p.ID))
	var n int64
	require.NoError(t, db.Model(&product.Image{}).Where("product_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, r.Delete(ctx, p.ID), gorm.ErrRecordNotFound)
}

func TestCartRepo_ClearByUserKeepsOthers(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewCartRepository(db)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, db, "alice", "alice@shop.test")
	bob := testhelpers.CreateUser(t, db, "bob", "bob@shop.test")
	p := testhelpers.CreateProduct(t, db, "Lamp", "12.50")
	require.NoError(t, r.Create(ctx, &cart.Line{ProductID: p.ID, UserID: alice.ID}))
	require.NoError(t, r.Create(ctx, &cart.Line{ProductID: p.ID, UserID: bob.ID}))

	require.NoError(t, r.ClearByUser(ctx, alice.ID))

	lines, err := r.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	lines, err = r.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestHistoryRepo_ByPaymentRef(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewHistoryRepository(db)
	ctx := context.Background()

	u := testhelpers.CreateUser(t, db, "alice", "alice@shop.test")
	p := testhelpers.CreateProduct(t, db, "Lamp", "12.50")
	for _, ref := range []string{"ref-a", "ref-a", "ref-b"} {
		require.NoError(t, db.Omit("Product").Create(&history.History{
			ProductID: p.ID, UserID: u.ID, Quantity: 1, PaymentRef: ref,
		}).Error)
	}

	rows, err := r.ListByPaymentRef(ctx, "ref-a")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, r.DeleteByPaymentRef(ctx, "ref-a"))
	rows, err = r.ListByPaymentRef(ctx, "ref-a")
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, err = r.ListByPaymentRef(ctx, "ref-b")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestOrderRepo_GetByIDLoadsDetails(t *testing.T) {
	db := testhelpers.NewDB(t)
	r := repo.NewOrderRepository(db)
	ctx := context.Background()

	u := testhelpers.CreateUser(t, db, "alice", "alice@shop.test")
	p := testhelpers.CreateProduct(t, db, "Lamp", "12.50")
	o := &order.Order{Status: order.StatusPending, UserID: u.ID}
	require.NoError(t, db.Omit("Details").Create(o).Error)
	require.NoError(t, db.Omit("Product").Create(&order.Detail{ProductID: p.ID, OrderID: o.ID}).Error)

	got, err := r.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 1)
	assert.Equal(t, "Lamp", got.Details[0].Product.Name)

	_, err = r.GetByID(ctx, o.ID+1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
