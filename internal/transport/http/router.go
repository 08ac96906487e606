package http

import (
	"context"
	"net/http"

	"github.com/event-locator/internal/application/auth"
	"github.com/event-locator/internal/application/category"
	"github.com/event-locator/internal/application/event"
	"github.com/event-locator/internal/application/favorite"
	"github.com/event-locator/internal/application/notification"
	"github.com/event-locator/internal/application/rating"
	"github.com/event-locator/internal/config"
	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/infrastructure/dynamo"
	jwtinfra "github.com/event-locator/internal/infrastructure/jwt"
	s3infra "github.com/event-locator/internal/infrastructure/s3"
	"github.com/event-locator/internal/transport/http/handler"
	appmiddleware "github.com/event-locator/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo      *dynamo.UserRepo
	EventRepo     *dynamo.EventRepo
	CategoryRepo  *dynamo.CategoryRepo
	FavoriteRepo  *dynamo.FavoriteRepo
	RatingRepo    *dynamo.RatingRepo
	S3Store       *s3infra.Store
	JWTProvider   *jwtinfra.Provider
	Notifications notification.Service
	// HealthChecks are probed by GET /api/health, keyed by backend name.
	HealthChecks map[string]func(context.Context) error
}

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background goroutines started by middleware.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	// 5 requests/second, burst of 10, applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{UserRepo: deps.UserRepo, JWTProvider: deps.JWTProvider})
	categorySvc := category.NewService(category.ServiceDeps{CategoryRepo: deps.CategoryRepo})
	eventSvc := event.NewService(event.ServiceDeps{
		EventRepo:     deps.EventRepo,
		CategoryRepo:  deps.CategoryRepo,
		FavoriteRepo:  deps.FavoriteRepo,
		Images:        deps.S3Store,
		Notifications: deps.Notifications,
	})
	favoriteSvc := favorite.NewService(favorite.ServiceDeps{
		FavoriteRepo:  deps.FavoriteRepo,
		EventRepo:     deps.EventRepo,
		Notifications: deps.Notifications,
	})
	ratingSvc := rating.NewService(rating.ServiceDeps{
		RatingRepo:    deps.RatingRepo,
		EventRepo:     deps.EventRepo,
		Notifications: deps.Notifications,
	})

	healthH := handler.NewHealthHandler(deps.HealthChecks)
	authH := handler.NewAuthHandler(authSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	eventH := handler.NewEventHandler(eventSvc)
	favoriteH := handler.NewFavoriteHandler(favoriteSvc)
	ratingH := handler.NewRatingHandler(ratingSvc)
	notifH := handler.NewNotificationHandler(deps.Notifications)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Check)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.Get("/events", eventH.List)
		r.Get("/events/{id}", eventH.Get)
		r.Get("/ratings/event/{eventId}", ratingH.ListByEvent)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/profile", authH.Profile)
			r.Put("/auth/profile", authH.UpdateProfile)

			r.Post("/events", eventH.Create)
			r.Put("/events/{id}", eventH.Update)
			r.Delete("/events/{id}", eventH.Delete)
			r.Post("/events/{id}/image", eventH.UploadImage)

			r.Post("/ratings", ratingH.Create)
			r.Put("/ratings/{id}", ratingH.Update)
			r.Delete("/ratings/{id}", ratingH.Delete)

			r.Get("/favorites", favoriteH.List)
			r.Post("/favorites", favoriteH.Add)
			r.Delete("/favorites/{eventId}", favoriteH.Remove)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Put("/notifications/read-all", notifH.MarkAllAsRead)
			r.Put("/notifications/{notificationId}/read", notifH.MarkAsRead)
			r.Delete("/notifications/{notificationId}", notifH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
