package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/admin"
)

type adminRepo struct {
	db *gorm.DB
}

// NewAdminRepository admin storage
func NewAdminRepository(db *gorm.DB) admin.Repository {
	return &adminRepo{db: db}
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	var a admin.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) GetByIdentifier(ctx context.Context, identifier string) (*admin.Admin, error) {
	var a admin.Admin
	if err := r.db.WithContext(ctx).
		Where("email = ? OR username = ? OR phone = ?", identifier, identifier, identifier).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) Create(ctx context.Context, a *admin.Admin) error {
	return r.db.WithContext(ctx).Create(a).Error
}
