package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/datamodels/admin"
)

// AdminSignupInput admin signup form after validation
type AdminSignupInput struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

type AdminService struct {
	repo admin.Repository
}

func NewAdminService(repo admin.Repository) *AdminService {
	return &AdminService{repo: repo}
}

func (s *AdminService) Signup(ctx context.Context, in AdminSignupInput) (*admin.Admin, error) {
	email := strings.TrimSpace(in.Email)
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	a := &admin.Admin{
		Username: strings.TrimSpace(in.Username),
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) Login(ctx context.Context, identifier, password string) (*admin.Admin, error) {
	identifier = strings.TrimSpace(identifier)
	if err := auth.CheckIdentifier(identifier); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByIdentifier(ctx, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(a.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}
