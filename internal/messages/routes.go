package messages

import (
	"github.com/MainePadFinder/padfinder/internal/auth"
	"github.com/MainePadFinder/padfinder/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router) {
	r.Route("/messages", func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))
		r.Get("/thread", ThreadHandler)
		r.Post("/send", SendHandler)
	})
}
