package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dyilmaz/community-backend/internal/api/handlers"
	"github.com/dyilmaz/community-backend/internal/auth"
	"github.com/dyilmaz/community-backend/internal/config"
	"github.com/dyilmaz/community-backend/internal/metrics"
	"github.com/dyilmaz/community-backend/internal/middleware"
	repo "github.com/dyilmaz/community-backend/internal/repository"
	"github.com/dyilmaz/community-backend/internal/services"
)

type Deps struct {
	Cfg       config.Config
	Users     *services.UserService
	Profiles  *services.ProfileService
	Countries repo.Countries
	TM        *auth.TokenManager
}

func NewRouter(d Deps) chi.Router {
	authmw := middleware.NewAuthMiddleware(d.TM)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	r.Use(authmw.Identity)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	home := handlers.NewHomeHandler(d.Users)
	ah := handlers.NewAuthHandler(d.Users, d.TM)
	ch := handlers.NewCommunityHandler(d.Profiles, d.Countries)

	r.Get("/", home.Index)
	r.Get("/login", ah.LoginPage)
	r.Post("/login", ah.Login)
	r.Post("/signup", ah.Signup)
	r.Post("/logout", ah.Logout)

	r.Route("/community", func(r chi.Router) {
		r.Get("/", ch.Index)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuthenticated)
			r.Get("/profile", ch.Profile)
			r.Post("/profile", ch.Profile)
			r.Get("/create_profile", ch.CreateProfile)
			r.Post("/create_profile", ch.CreateProfile)
			r.Get("/update_profile", ch.UpdateProfile)
			r.Post("/update_profile", ch.UpdateProfile)
			r.Get("/display_profiles", ch.DisplayProfiles)
			r.Post("/display_profiles", ch.DisplayProfiles)
			r.Get("/display_profiles/{username}/", ch.DisplayProfiles)
			r.Post("/display_profiles/{username}/", ch.DisplayProfiles)
			r.Get("/display_profiles/{username}", ch.DisplayProfiles)
		})
	})

	return r
}
