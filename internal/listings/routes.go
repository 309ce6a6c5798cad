package listings

import (
	"github.com/MainePadFinder/padfinder/internal/auth"
	"github.com/MainePadFinder/padfinder/internal/middleware"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router) {
	r.Get("/properties", SearchHandler)
	r.Post("/properties", SearchHandler)
	r.Get("/properties/deals", DealsHandler)
	r.Post("/properties/deals", DealsHandler)

	r.Get("/listing/{id}", ListingHandler)
	r.Get("/listing/{id}/reviews", ReviewsHandler)
	r.Get("/listing/{id}/trend", TrendHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))
		r.Post("/listing/{id}/review", ReviewHandler)

		r.Route("/manage-properties", func(r chi.Router) {
			r.Use(middleware.RoleMiddleware(auth.RoleInfo{}))
			r.Use(middleware.RequireRole(utils.RoleLandlord))

			r.Get("/", MyPropertiesHandler)
			r.Post("/", CreatePropertyHandler)
			r.Put("/{id}", UpdatePropertyHandler)
			r.Delete("/{id}", DeletePropertyHandler)
		})
	})
}
