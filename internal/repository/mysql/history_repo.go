package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/history"
)

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepository history storage
func NewHistoryRepository(db *gorm.DB) history.Repository {
	return &historyRepo{db: db}
}

func (r *historyRepo) ListByUser(ctx context.Context, userID int64) ([]*history.History, error) {
	var list []*history.History
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *historyRepo) ListByPaymentRef(ctx context.Context, ref string) ([]*history.History, error) {
	var list []*history.History
	if err := r.db.WithContext(ctx).
		Where("payment_ref = ?", ref).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *historyRepo) DeleteByPaymentRef(ctx context.Context, ref string) error {
	return r.db.WithContext(ctx).Where("payment_ref = ?", ref).Delete(&history.History{}).Error
}
