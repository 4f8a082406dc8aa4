package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lumio_social/internal/handler"
	"lumio_social/internal/httputil"
	authmw "lumio_social/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	PostHandler        *handler.PostHandler
	CommentHandler     *handler.CommentHandler
	ProfileHandler     *handler.ProfileHandler
	LeaderboardHandler *handler.LeaderboardHandler
	MediaHandler       *handler.MediaHandler
	JWTSecret          string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/challenge", cfg.AuthHandler.Challenge)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	r.Get("/profiles/{wallet}", cfg.ProfileHandler.Get)
	r.Get("/balances/{wallet}", cfg.ProfileHandler.Balance)

	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/posts", cfg.LeaderboardHandler.TopPosts)
		r.Get("/comments", cfg.LeaderboardHandler.TopComments)
		r.Get("/vibes", cfg.LeaderboardHandler.TopWallets)
	})

	// Reads with optional authentication fill in is_upvoted for the viewer
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/posts", cfg.PostHandler.List)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.ListForPost)
		r.Get("/comments", cfg.CommentHandler.ListAll)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/me/profile", cfg.ProfileHandler.Update)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{id}/upvote", cfg.PostHandler.ToggleUpvote)
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Post("/comments/{id}/upvote", cfg.CommentHandler.ToggleUpvote)

		r.Post("/media/images/presign", cfg.MediaHandler.PresignImage)
		r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
	})

	return r
}
