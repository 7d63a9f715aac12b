package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-online-store/auth-service/internal/models"
	"github.com/pribylovaa/go-online-store/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-online-store/auth-service/internal/storage"
)

// tokenClaims — полезная нагрузка обоих классов токенов: идентификатор
// пользователя и стандартные registered-поля (exp/iat/iss/aud/sub).
// Классы различаются не структурой, а секретом подписи: access-секрет
// никогда не валидирует refresh-токен и наоборот.
type tokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// generateAccessToken генерирует короткоживущий access-токен.
func (s *Service) generateAccessToken(ctx context.Context, userID uuid.UUID, now time.Time) (string, error) {
	const op = "service.token.generateAccessToken"

	return s.generateToken(ctx, op, userID, now, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
}

// generateRefreshToken генерирует долгоживущий refresh-токен.
func (s *Service) generateRefreshToken(ctx context.Context, userID uuid.UUID, now time.Time) (string, error) {
	const op = "service.token.generateRefreshToken"

	return s.generateToken(ctx, op, userID, now, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
}

func (s *Service) generateToken(ctx context.Context, op string, userID uuid.UUID, now time.Time, secret string, ttl time.Duration) (string, error) {
	lg := log.From(ctx)

	claims := tokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		lg.Error("token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseToken валидирует токен секретом своего класса и возвращает ID
// пользователя из claims. Три исхода: nil, ErrTokenExpired (токен корректен,
// но просрочен), ErrInvalidToken (всё остальное: подпись, формат, метод).
// Срок проверяется строго, без leeway: опоздание даже на секунду — expired.
func (s *Service) parseToken(tokenStr, secret string) (uuid.UUID, error) {
	const op = "service.token.parseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, nil
}

// VerifyAccessToken проверяет access-токен и возвращает ID пользователя.
// Stateless: только подпись и срок действия, без обращения к хранилищу.
func (s *Service) VerifyAccessToken(accessToken string) (uuid.UUID, error) {
	const op = "service.token.VerifyAccessToken"

	uid, err := s.parseToken(accessToken, s.cfg.AccessSecret)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return uid, nil
}

// issueTokenPair выпускает новую пару access+refresh токенов и сохраняет
// refresh-токен в записи пользователя, перезаписывая предыдущий. Старый
// refresh-токен с этого момента отозван.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.RefreshToken = refreshToken

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}
