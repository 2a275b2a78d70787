package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/tournament-arena/docs"
	"github.com/Dosada05/tournament-arena/handlers"
	"github.com/Dosada05/tournament-arena/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Registry       *prometheus.Registry
}

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	Badge      *handlers.BadgeHandler
	User       *handlers.UserHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	limited := middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst))

	router.Get("/swagger/doc.json", docs.Handler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if opts.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Websocket-соединения живут дольше, чем Timeout ниже.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Use(limited)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
			r.Get("/{tournamentID}/bracket", h.Bracket.GetViewHandler)
			r.Get("/{tournamentID}/badge-rules", h.Badge.ListRulesHandler)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(limited)

				r.Post("/", h.Tournament.CreateHandler)
				r.Post("/{tournamentID}/participants", h.Tournament.JoinHandler)
				r.Delete("/{tournamentID}/participants/{userID}", h.Tournament.RemoveParticipantHandler)
				r.Put("/{tournamentID}/staff", h.Tournament.UpdateStaffHandler)
				r.Post("/{tournamentID}/bracket", h.Bracket.BuildHandler)
				r.Post("/{tournamentID}/badge-rules", h.Badge.AddRuleHandler)
			})
		})

		r.With(authenticate, limited).Post("/brackets/{bracketID}/matches/{matchID}/result", h.Bracket.ReportResultHandler)

		r.Route("/badges", func(r chi.Router) {
			r.Get("/", h.Badge.ListHandler)
			r.With(authenticate, limited).Post("/", h.Badge.CreateHandler)
		})

		r.Get("/users/{userID}/profile", h.User.ProfileHandler)
		r.Get("/leaderboard", h.User.LeaderboardHandler)
	})
}
