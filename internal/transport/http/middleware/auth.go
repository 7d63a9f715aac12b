package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-online-store/auth-service/internal/models"
	logctx "github.com/pribylovaa/go-online-store/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/response"
)

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

// UserIDFrom возвращает ID пользователя, положенный гейтом Authenticate.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyUserID{}).(uuid.UUID)
	return id, ok
}

// RoleFrom возвращает роль, положенную гейтом RequireAdmin.
func RoleFrom(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ctxKeyRole{}).(string)
	return role, ok
}

// bearerToken извлекает токен из Authorization: Bearer <token>.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}

// Authenticate — гейт идентичности: требует валидный access-токен
// и кладёт ID пользователя в контекст запроса.
//
// Исходы: нет токена -> 401 "token not provided"; просрочен -> 401 с
// флагом expired (клиенту стоит сходить в /auth/refresh); битый -> 401;
// валиден -> запрос продолжается. Проверка stateless — без похода в БД.
func Authenticate(svc *service.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.WriteMessage(w, http.StatusUnauthorized, "token not provided")
				return
			}

			userID, err := svc.VerifyAccessToken(token)
			if err != nil {
				response.WriteError(w, err)
				return
			}

			// Дальше по цепочке логи пишутся с user_id.
			ctx := logctx.With(r.Context(), slog.String("user_id", userID.String()))
			ctx = context.WithValue(ctx, ctxKeyUserID{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin — ролевой гейт поверх Authenticate: дополнительно читает
// текущую роль из учётной записи и пропускает только админов.
//
// Исходы: пользователь исчез -> 404; роль не admin -> 403;
// иначе роль кладётся в контекст и запрос продолжается.
func RequireAdmin(svc *service.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFrom(r.Context())
			if !ok {
				// RequireAdmin без Authenticate — ошибка сборки роутера.
				response.WriteMessage(w, http.StatusUnauthorized, "token not provided")
				return
			}

			role, err := svc.RoleByID(r.Context(), userID)
			if err != nil {
				response.WriteError(w, err)
				return
			}

			if role != models.RoleAdmin {
				logctx.From(r.Context()).Warn("admin_access_denied",
					slog.String("user_id", userID.String()),
					slog.String("role", role),
				)
				response.WriteMessage(w, http.StatusForbidden, "admin access required")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyRole{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
