/*
Package handler provides the HTTP handlers and routing setup for the direct messaging server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"dmchat/internal/app/auth"
	"dmchat/internal/pkg/limiter"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

const (
	AuthRate  = 0.5
	AuthBurst = 10
	WSRate    = 1
	WSBurst   = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
// The limiters stop their cleanup goroutines when ctx ends.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(ctx, "auth", rate.Limit(AuthRate), AuthBurst)
	sendLimiter := limiter.NewIPRateLimiter(ctx, "send", rate.Limit(deps.Config.SendRate), deps.Config.SendBurst)
	wsLimiter := limiter.NewIPRateLimiter(ctx, "ws", rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
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
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
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
		resp.RespondJSON(w, r, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "dmchat",
		})
	})

	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.With(authLimiter.Middleware).Post("/signup", HandleSignup(deps))
			ar.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))
			ar.Post("/logout", HandleLogout(deps))

			ar.Group(func(protected chi.Router) {
				protected.Use(auth.RequireIdentity(deps.Verifier))
				protected.Put("/update", HandleUpdateProfile(deps))
				protected.Get("/check", HandleCheckAuth(deps))
			})
		})

		api.Route("/messages", func(mr chi.Router) {
			mr.Use(auth.RequireIdentity(deps.Verifier))

			mr.Get("/users", HandleListContacts(deps))
			mr.Get("/{otherUserId}", HandleListMessages(deps))
			mr.With(sendLimiter.Middleware).Post("/send/{receiverId}", HandleSendMessage(deps))
		})
	})

	r.With(wsLimiter.Middleware).Get("/ws", HandleWebSocket(deps, wsUpgrader))

	return r
}
