package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/handlers"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Ready — readiness-проба для /healthz; nil означает «всегда готов».
	Ready func() bool
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики и длительности по маршрутам
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)
	authn := middleware.Authenticate(svc)
	admin := middleware.RequireAdmin(svc)

	// Публичные маршруты.
	root.Post("/auth/register", h.Register)
	root.Post("/auth/login", h.Login)
	root.Post("/auth/refresh", h.Refresh)

	// Маршруты за гейтом идентичности.
	root.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/auth/logout", h.Logout)
		r.Get("/profile", h.Profile)
		r.Put("/profile", h.UpdateProfile)
		r.Post("/change-password", h.ChangePassword)
	})

	// Админский бэк-офис: идентичность + роль.
	root.Group(func(r chi.Router) {
		r.Use(authn, admin)

		r.Get("/admin/users", h.ListUsers)
		r.Get("/admin/users/{id}", h.UserByID)
	})

	// Служебные маршруты без аутентификации.
	root.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready == nil || opts.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	root.Handle("/metrics", promhttp.Handler())

	return root
}
