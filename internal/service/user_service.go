package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/datamodels/user"
)

// SignupInput shop signup form after validation
type SignupInput struct {
	FirstName       string
	LastName        string
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

type UserService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo}
}

// Signup creates a customer. The email must not be registered yet.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*user.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	email := strings.TrimSpace(in.Email)
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Username:  strings.TrimSpace(in.Username),
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Password:  hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login matches identifier against email, username or phone and checks the
// password. An all-digit identifier must be a full phone number.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*user.User, error) {
	identifier = strings.TrimSpace(identifier)
	if err := auth.CheckIdentifier(identifier); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByIdentifier(ctx, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
