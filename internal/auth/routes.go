package auth

import (
	"github.com/MainePadFinder/padfinder/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router) {
	sessionFetcher := SessionInfo{}
	roleResolver := RoleInfo{}

	r.Post("/signup", SignupHandler)
	r.Post("/login", LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RoleMiddleware(roleResolver))
			r.Get("/me", MeHandler)
			r.Get("/profile", ProfileHandler)
			r.Get("/settings", GetSettingsHandler)
			r.Put("/settings", UpdateSettingsHandler)
		})
	})
}
