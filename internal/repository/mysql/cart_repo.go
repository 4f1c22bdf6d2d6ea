package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/goshop/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository cart storage
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&cart.Line{}).
		Where("product_id = ?", productID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *cartRepo) ExistsForUserProduct(ctx context.Context, userID, productID int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&cart.Line{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *cartRepo) Create(ctx context.Context, l *cart.Line) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]*cart.Line, error) {
	var list []*cart.Line
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&cart.Line{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepo) ClearByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cart.Line{}).Error
}
