package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/example/account-service/internal/api/handlers"
	"github.com/example/account-service/internal/auth"
	"github.com/example/account-service/internal/config"
	"github.com/example/account-service/internal/metrics"
	"github.com/example/account-service/internal/middleware"
	"github.com/example/account-service/internal/models"
	repo "github.com/example/account-service/internal/repository"
	"github.com/example/account-service/internal/services"
)

type RouterDeps struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	Users    repo.Users
	Accounts *services.AccountService
	Resets   *services.ResetService
	Linked   *services.LinkedService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authn := middleware.NewAuthMiddleware(d.TM)
	authH := handlers.NewAuthHandler(d.Accounts, d.Resets)
	adminH := handlers.NewAdminHandler(d.Accounts)
	linkedH := handlers.NewLinkedHandler(d.Linked)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/forgot-password", authH.ForgotPassword)
		r.Post("/auth/reset-password", authH.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)
			r.Get("/auth/me", authH.Me)
			r.Put("/auth/profile", authH.UpdateProfile)
			r.Put("/auth/change-password", authH.ChangePassword)
			r.Delete("/auth/account", authH.DeleteAccount)
		})

		// ---------- admin ----------
		r.Route("/admin", func(r chi.Router) {
			r.Use(authn.Authenticate)
			r.Use(middleware.RequireRole(d.Users, models.RoleAdmin))
			r.Get("/users", adminH.ListUsers)
			r.Post("/users", adminH.CreateAdmin)
			r.Get("/users/{id}", adminH.GetUser)
			r.Put("/users/{id}", adminH.UpdateUser)
			r.Put("/users/{id}/reset-password", adminH.ResetUserPassword)
			r.Delete("/users/{id}", adminH.DeleteUser)
		})

		// ---------- linked accounts (mock OAuth) ----------
		r.Route("/linked-accounts", func(r chi.Router) {
			r.Use(authn.Authenticate)
			r.Get("/", linkedH.List)
			r.Post("/connect/{provider}", linkedH.Connect)
			r.Post("/callback/{provider}", linkedH.Callback)
			r.Delete("/{id}", linkedH.Unlink)
			r.Get("/data/{provider}", linkedH.ProviderData)
		})
	})

	return r
}
