package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-online-store/auth-service/internal/models"
	"github.com/pribylovaa/go-online-store/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-online-store/auth-service/internal/storage"
)

// ProfileInput — данные формы редактирования профиля.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// ProfileByID возвращает учётную запись пользователя.
func (s *Service) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "service.profile.ProfileByID"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile обновляет профильные поля пользователя.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error) {
	const op = "service.profile.UpdateProfile"

	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if email != user.Email {
		_, err := s.storage.UserByEmail(ctx, email)
		if err == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	user.Email = email
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Address = strings.TrimSpace(in.Address)

	if err := s.storage.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// RoleByID возвращает роль пользователя для админского гейта.
// Сначала кэш (если сконфигурирован), затем хранилище с дозаписью в кэш.
// Ошибки кэша деградируют до чтения из хранилища и не роняют запрос.
func (s *Service) RoleByID(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "service.profile.RoleByID"

	lg := log.From(ctx)

	if s.roles != nil {
		role, ok, err := s.roles.Get(ctx, userID)
		if err != nil {
			lg.Warn("role_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if ok {
			return role, nil
		}
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if s.roles != nil {
		if err := s.roles.Set(ctx, userID, user.Role, s.cfg.RoleCacheTTL); err != nil {
			lg.Warn("role_cache_set_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return user.Role, nil
}

// AccountByID возвращает учётную запись для админского бэк-офиса.
func (s *Service) AccountByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.profile.AccountByID"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ListAccounts возвращает все учётные записи для админского бэк-офиса.
func (s *Service) ListAccounts(ctx context.Context) ([]models.User, error) {
	const op = "service.profile.ListAccounts"

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}
