package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// ResolveCaller turns the user id carried by a verified token into the
// caller's identity. A token for a user that no longer exists is unauthenticated.
func (s *UserService) ResolveCaller(ctx context.Context, userID string) (domain.Identity, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.Identity{}, ErrUnauthenticated
		}

		return domain.Identity{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user.Identity(), nil
}

// EnsureAdmin creates the configured admin account when no admin exists yet.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("s.repo.CountByRole -> %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	admin, err := s.repo.Create(ctx, domain.User{
		Email:    normalizeEmail(email),
		Password: hash,
		Name:     name,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("seeded admin account", zap.String("id", admin.ID), zap.String("email", admin.Email))

	return true, nil
}
