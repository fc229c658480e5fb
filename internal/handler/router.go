/*
Package handler provides the HTTP handlers and routing setup for the EchoHub server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/limiter"
	"echohub/internal/pkg/logx"
	"echohub/internal/pkg/resp"
)

const (
	// AuthRate throttles account creation and login attempts per IP.
	AuthRate  = 0.1
	AuthBurst = 3

	// ConnectRate throttles WebSocket handshakes per IP.
	ConnectRate  = 0.5
	ConnectBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware before delegating to the API and WebSocket handlers.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "EchoHub Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authLimiter.Middleware(HandleRegister(deps)).ServeHTTP)
			auth.Post("/login", authLimiter.Middleware(HandleLogin(deps)).ServeHTTP)
		})

		api.Route("/user", func(user chi.Router) {
			user.Put("/profile", HandleUpdateProfile(deps))
			user.Delete("/account", HandleDeleteAccount(deps))
			user.Post("/avatar/presign-upload", HandleAvatarUploadURL(deps))
			user.Get("/avatar/presign-download", HandleAvatarDownloadURL(deps))
		})

		api.Get("/users", HandleListUsers(deps))

		api.Route("/friends", func(friends chi.Router) {
			friends.Get("/", HandleListFriends(deps))
			friends.Get("/requests", HandleListFriendRequests(deps))
			friends.Post("/requests", HandleSendFriendRequest(deps))
			friends.Post("/requests/{requestId}/accept", HandleAcceptFriendRequest(deps))
			friends.Post("/requests/{requestId}/reject", HandleRejectFriendRequest(deps))
			friends.Delete("/{friendUserId}", HandleRemoveFriend(deps))
		})

		api.Get("/messages/{contactUserId}", HandleGetMessages(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
