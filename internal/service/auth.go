package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-online-store/auth-service/internal/models"
	"github.com/pribylovaa/go-online-store/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-online-store/auth-service/internal/pkg/redact"
	"github.com/pribylovaa/go-online-store/auth-service/internal/storage"
)

// RegisterInput — данные формы регистрации.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Address         string
}

// RegisterUser регистрирует нового покупателя. Регистрация сразу логинит:
// пара токенов выпускается и refresh-токен сохраняется в новой записи.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.RegisterUser"

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := s.validatePassword(in.Password); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password != in.ConfirmPassword {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	_, err = s.storage.UserByEmail(ctx, email)
	if err == nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         models.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	return pair, user, nil
}

// LoginUser выполняет вход по email+пароль. Успешный вход перезаписывает
// сохранённый refresh-токен: предыдущая сессия отзывается.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.LoginUser"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Тот же исход, что и при неверном пароле: ответы не должны
			// выдавать, зарегистрирован ли email.
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		log.From(ctx).Warn("login_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
			slog.String("password", redact.Password()),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_in",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	return pair, user, nil
}

// RefreshToken выпускает новый access-токен по refresh-токену.
// Refresh-токен при этом не перевыпускается: он остаётся действующим
// до следующего логина или logout.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	const op = "service.auth.RefreshToken"

	lg := log.From(ctx)

	uid, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		// Просроченный refresh-токен наружу неотличим от битого: флаг
		// expired зарезервирован за access-токенами, здесь клиенту в любом
		// случае дорога на повторный логин.
		if errors.Is(err, ErrTokenExpired) {
			return "", time.Time{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", time.Time{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	// Подпись и срок в порядке, но действует только тот refresh-токен,
	// который записан в учётной записи.
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		lg.Warn("refresh_token_revoked",
			slog.String("op", op),
			slog.String("user_id", uid.String()),
			slog.String("refresh_token", redact.Token()),
		)
		return "", time.Time{}, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	now := time.Now().UTC()
	accessToken, err := s.generateAccessToken(ctx, user.ID, now)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, now.Add(s.cfg.AccessTokenTTL), nil
}

// Logout очищает сохранённый refresh-токен пользователя и снимает его
// роль из кэша. Идемпотентен: повторный logout и logout исчезнувшего
// пользователя — не ошибка.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "service.auth.Logout"

	if err := s.storage.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if s.roles != nil {
		if err := s.roles.Invalidate(ctx, userID); err != nil {
			log.From(ctx).Warn("role_cache_invalidate_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	log.From(ctx).Info("user_logged_out",
		slog.String("op", op),
		slog.String("user_id", userID.String()),
	)

	return nil
}

// ChangePassword меняет пароль пользователя после проверки текущего.
// Новый пароль, совпадающий с текущим, отклоняется — проверка выполняется
// по старому хэшу ДО записи нового.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, confirmPassword string) error {
	const op = "service.auth.ChangePassword"

	if current == "" || newPassword == "" || confirmPassword == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	if err := s.validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if newPassword != confirmPassword {
		return fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, current) {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if checkPassword(user.PasswordHash, newPassword) {
		return fmt.Errorf("%s: %w", op, ErrSamePassword)
	}

	hashedPassword, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("password_changed",
		slog.String("op", op),
		slog.String("user_id", userID.String()),
	)

	return nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func (s *Service) hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем. Битый хэш — это просто
// несовпадение, не отдельная ошибка.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
// Адрес сохраняется как введён (без нормализации регистра).
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return email, nil
}

// validatePassword проверяет минимальную длину пароля.
func (s *Service) validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if pw == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	if len([]rune(pw)) < s.cfg.MinPasswordLen {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
