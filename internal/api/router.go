package api

import (
	"log/slog"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/handlers"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/api/middleware"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/applications"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/connections"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/events"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/memberships"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/policy"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/profiles"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/search"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB           *gorm.DB
	Redis        *redis.Client
	Logger       *slog.Logger
	JWTService   *auth.JWTService
	AuthService  *auth.Service
	BadgeService *badges.Service

	// Dispatcher runs badge evaluation for profile, membership and
	// connection triggers. Nil evaluates inline.
	Dispatcher badges.Dispatcher
	Sealer     profiles.FieldSealer
	// SearchSource defaults to the database.
	SearchSource search.Source
	// Google is nil when Google sign-in is not configured.
	Google auth.IdentityProvider

	AllowedOrigins []string              // CORS allowed origins
	RateLimiter    middleware.LimitStore // nil disables rate limiting
	SecureCookies  bool
	TokenTTL       time.Duration
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Logger))
	}

	// CORS - restrict to configured origins, localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	badgeService := cfg.BadgeService
	if badgeService == nil {
		badgeService = badges.NewService(cfg.DB, cfg.Logger)
	}
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = badges.NewInlineDispatcher(badgeService)
	}
	source := cfg.SearchSource
	if source == nil {
		source = search.NewGormSource(cfg.DB)
	}
	profileService := profiles.NewService(cfg.DB, cfg.Sealer, dispatcher, cfg.Logger)
	eventService := events.NewService(cfg.DB, cfg.Logger)
	applicationService := applications.NewService(cfg.DB, cfg.Logger)
	membershipService := memberships.NewService(cfg.DB, dispatcher, cfg.Logger)
	connectionService := connections.NewService(cfg.DB, dispatcher, cfg.Logger)
	searchService := search.NewService(cfg.DB, source, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, handlers.AuthHandlerOptions{
		Google:        cfg.Google,
		SecureCookies: cfg.SecureCookies,
		TokenTTL:      cfg.TokenTTL,
	}, cfg.Logger)
	userHandler := handlers.NewUserHandler(cfg.AuthService, cfg.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, cfg.Logger)
	searchHandler := handlers.NewSearchHandler(searchService, cfg.Logger)
	eventHandler := handlers.NewEventHandler(eventService, cfg.Logger)
	applicationHandler := handlers.NewApplicationHandler(applicationService, cfg.Logger)
	badgeHandler := handlers.NewBadgeHandler(badgeService, cfg.Logger)
	membershipHandler := handlers.NewMembershipHandler(membershipService, cfg.Logger)
	connectionHandler := handlers.NewConnectionHandler(connectionService, cfg.Logger)

	requireAuth := middleware.Auth(cfg.JWTService)
	can := middleware.RequireCapability

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/google", authHandler.GoogleStart)
			r.Get("/google/callback", authHandler.GoogleCallback)
			r.With(requireAuth).Get("/me", authHandler.Me)
		})

		// Public organization browsing
		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", searchHandler.Organizations)
			r.Get("/sizes", searchHandler.Sizes)
			r.Get("/{id}", profileHandler.Get)
			r.Get("/{id}/followers", profileHandler.Followers)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, can(policy.FollowOrganizations))
				r.Post("/{id}/follow", profileHandler.Follow)
				r.Delete("/{id}/follow", profileHandler.Unfollow)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Put("/me", userHandler.UpdateMe)
				r.Put("/me/password", userHandler.ChangePassword)
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/me", profileHandler.Me)
				r.Put("/me", profileHandler.Update)
				r.Delete("/me", profileHandler.Delete)
				r.Get("/me/activities", profileHandler.Activities)
				r.With(can(policy.FollowOrganizations)).Get("/me/following", profileHandler.Following)
				r.Post("/me/skills", profileHandler.AddSkill)
				r.Delete("/me/skills/{skillID}", profileHandler.RemoveSkill)
				r.Post("/me/interests", profileHandler.AddInterest)
				r.Delete("/me/interests/{interestID}", profileHandler.RemoveInterest)
				r.Post("/skills/{skillID}/endorse", profileHandler.EndorseSkill)
				r.Get("/volunteers", searchHandler.Volunteers)
				r.Get("/{id}", profileHandler.Get)
				r.Get("/{id}/skills", profileHandler.Skills)
				r.Get("/{id}/interests", profileHandler.Interests)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventHandler.List)
				r.Get("/{id}", eventHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(can(policy.ManageEvents))
					r.Get("/mine", eventHandler.Mine)
					r.Post("/", eventHandler.Create)
					r.Put("/{id}", eventHandler.Update)
					r.Delete("/{id}", eventHandler.Delete)
					r.Post("/{id}/publish", eventHandler.Publish)
					r.Post("/{id}/cancel", eventHandler.Cancel)
					r.Post("/{id}/complete", eventHandler.Complete)
				})
				r.With(can(policy.ReviewApplications)).Get("/{id}/applications", applicationHandler.ForEvent)
			})

			r.Route("/applications", func(r chi.Router) {
				r.Get("/{id}", applicationHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(can(policy.ApplyToEvents))
					r.Post("/", applicationHandler.Submit)
					r.Get("/mine", applicationHandler.Mine)
					r.Post("/{id}/withdraw", applicationHandler.Withdraw)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(policy.ReviewApplications))
					r.Post("/{id}/approve", applicationHandler.Approve)
					r.Post("/{id}/reject", applicationHandler.Reject)
					r.Post("/{id}/attended", applicationHandler.Attended)
					r.Post("/{id}/no-show", applicationHandler.NoShow)
				})
			})

			r.Route("/badges", func(r chi.Router) {
				r.Get("/", badgeHandler.Catalog)
				r.Get("/mine", badgeHandler.Mine)
				r.Get("/profiles/{id}", badgeHandler.ForProfile)
				r.Get("/profiles/{id}/points", badgeHandler.Points)
			})

			r.Route("/volunteer-management", func(r chi.Router) {
				r.Get("/{id}", membershipHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(can(policy.JoinOrganizations))
					r.Post("/join", membershipHandler.Join)
					r.Get("/mine", membershipHandler.Mine)
					r.Post("/{id}/leave", membershipHandler.Leave)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(policy.ManageMembers))
					r.Post("/invite", membershipHandler.Invite)
					r.Get("/roster", membershipHandler.Roster)
					r.Put("/{id}/status", membershipHandler.UpdateStatus)
					r.Put("/{id}/role", membershipHandler.UpdateRole)
					r.Post("/{id}/rating", membershipHandler.Rate)
				})
				r.With(can(policy.LogActivity)).Post("/{id}/activities", membershipHandler.LogActivity)
			})

			r.Route("/connections", func(r chi.Router) {
				r.Use(can(policy.Connect))
				r.Get("/", connectionHandler.List)
				r.Post("/", connectionHandler.Request)
				r.Get("/pending", connectionHandler.Pending)
				r.Get("/{id}", connectionHandler.Get)
				r.Post("/{id}/accept", connectionHandler.Accept)
				r.Post("/{id}/reject", connectionHandler.Reject)
				r.Post("/{id}/block", connectionHandler.Block)
				r.Post("/{id}/archive", connectionHandler.Archive)
				r.Post("/{id}/restore", connectionHandler.Restore)
				r.Post("/{id}/interactions", connectionHandler.Interact)
			})
		})
	})

	r.NotFound(handlers.NotFound)

	return &Router{r}
}
