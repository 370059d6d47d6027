package handler

import (
	"dmchat/internal/app/auth"
	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/metrics"
)

// AppDeps holds the services the handlers call into.
type AppDeps struct {
	Config   *configs.AppConfig
	Auth     *auth.Service
	Verifier *auth.Verifier
	Profiles *user.ProfileService
	Users    user.Repository
	Gateway  *message.Gateway
	Registry *chat.Registry
	Fanout   *chat.Fanout
	Manager  *chat.Manager
	Metrics  *metrics.Metrics
}

// NewAppDeps wires the services on top of the chosen repositories and object store.
func NewAppDeps(
	cfg *configs.AppConfig,
	users user.Repository,
	messages message.Repository,
	objects storage.ObjectStore,
	m *metrics.Metrics,
) *AppDeps {
	verifier := auth.NewVerifier(users, cfg.JWTSecret)
	registry := chat.NewRegistry()
	fanout := chat.NewFanout(registry, cfg.SendTimeout, m)

	return &AppDeps{
		Config:   cfg,
		Auth:     auth.NewService(users, cfg.JWTSecret, cfg.TokenTTL),
		Verifier: verifier,
		Profiles: user.NewProfileService(users, objects),
		Users:    users,
		Gateway:  message.NewGateway(messages, users, objects, m),
		Registry: registry,
		Fanout:   fanout,
		Manager:  chat.NewManager(verifier, registry, fanout, m),
		Metrics:  m,
	}
}
