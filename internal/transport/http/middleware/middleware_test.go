package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-online-store/auth-service/internal/config"
	"github.com/pribylovaa/go-online-store/auth-service/internal/models"
	logctx "github.com/pribylovaa/go-online-store/auth-service/internal/pkg/log"
	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/storage"
	"github.com/pribylovaa/go-online-store/auth-service/mocks"
)

const (
	testAccessSecret  = "mw-access-secret"
	testRefreshSecret = "mw-refresh-secret"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    testAccessSecret,
		RefreshSecret:   testRefreshSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "auth-service",
		Audience:        []string{"online-store"},
		BcryptCost:      4,
		MinPasswordLen:  8,
	}
}

func newTestService(t *testing.T) (*service.Service, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	return service.New(st, testAuthCfg()), st
}

// mintAccessToken подписывает access-токен напрямую — тем же секретом
// и с теми же claims, что и сервис.
func mintAccessToken(t *testing.T, secret string, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid": userID.String(),
		"sub": userID.String(),
		"iss": "auth-service",
		"aud": "online-store",
		"iat": jwt.NewNumericDate(time.Now().UTC()),
		"exp": jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// sink — конечный обработчик за гейтами: отвечает 200 и отдаёт userID из контекста.
func sink(t *testing.T, gotUserID *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserIDFrom(r.Context()); ok && gotUserID != nil {
			*gotUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_NoToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	h := Chain(sink(t, nil), Authenticate(svc))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, "token not provided", body["message"])
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	h := Chain(sink(t, nil), Authenticate(svc))

	for _, header := range []string{"bearer-without-scheme", "Basic dXNlcjpwYXNz", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticate_Expired_SetsFlag(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	h := Chain(sink(t, nil), Authenticate(svc))

	token := mintAccessToken(t, testAccessSecret, uuid.New(), time.Now().UTC().Add(-time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["expired"])
}

// Токен, предъявленный через TTL + 1 секунду после выпуска, отклоняется
// как просроченный: срок строгий, без допусков.
func TestAuthenticate_ExpiredOneSecondPastTTL(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	h := Chain(sink(t, nil), Authenticate(svc))

	issuedAt := time.Now().UTC().Add(-(time.Hour + time.Second))
	token := mintAccessToken(t, testAccessSecret, uuid.New(), issuedAt.Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, true, body["expired"])
}

func TestAuthenticate_WrongSecret_NoExpiredFlag(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	h := Chain(sink(t, nil), Authenticate(svc))

	token := mintAccessToken(t, "not-the-secret", uuid.New(), time.Now().UTC().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.NotContains(t, body, "expired")
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	t.Parallel()

	// Refresh-токен в Authorization не проходит гейт идентичности.
	svc, _ := newTestService(t)
	h := Chain(sink(t, nil), Authenticate(svc))

	token := mintAccessToken(t, testRefreshSecret, uuid.New(), time.Now().UTC().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_Valid_AttachesUserID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	userID := uuid.New()
	var got uuid.UUID
	h := Chain(sink(t, &got), Authenticate(svc))

	token := mintAccessToken(t, testAccessSecret, userID, time.Now().UTC().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, got)
}

// После гейта request-scoped логгер дополнен атрибутом user_id.
func TestAuthenticate_EnrichesRequestLogger(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&buf, nil))

	end := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logctx.From(r.Context()).Info("handled")
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(end, Authenticate(svc))

	userID := uuid.New()
	token := mintAccessToken(t, testAccessSecret, userID, time.Now().UTC().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(logctx.Into(req.Context(), baseLogger))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, buf.String(), "user_id="+userID.String())
}

func TestRequireAdmin_ForbiddenForCustomer(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	userID := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), userID).Return(&models.User{
		ID:   userID,
		Role: models.RoleCustomer,
	}, nil)

	h := Chain(sink(t, nil), Authenticate(svc), RequireAdmin(svc))

	token := mintAccessToken(t, testAccessSecret, userID, time.Now().UTC().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
}

func TestRequireAdmin_UserGone(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	userID := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), userID).Return(nil, storage.ErrNotFound)

	h := Chain(sink(t, nil), Authenticate(svc), RequireAdmin(svc))

	token := mintAccessToken(t, testAccessSecret, userID, time.Now().UTC().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	userID := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), userID).Return(&models.User{
		ID:   userID,
		Role: models.RoleAdmin,
	}, nil)

	var role string
	end := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ = RoleFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(end, Authenticate(svc), RequireAdmin(svc))

	token := mintAccessToken(t, testAccessSecret, userID, time.Now().UTC().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.RoleAdmin, role)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	t.Parallel()

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, rec.Header().Get("X-Request-Id"), 32)

	// Существующий id не перезаписывается.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}

func TestRecover_PanicBecomes500(t *testing.T) {
	t.Parallel()

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	t.Parallel()

	var hadDeadline bool
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	}), Timeout(time.Second))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, hadDeadline)
}
