package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/payment"
)

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepository payment storage
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) GetByReference(ctx context.Context, ref string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) GetByOrderIDs(ctx context.Context, orderIDs []int64) ([]*payment.Payment, error) {
	var list []*payment.Payment
	if len(orderIDs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
