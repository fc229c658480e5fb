package handler

import (
	"echohub/internal/app/chat"
	"echohub/internal/app/friend"
	"echohub/internal/app/storage"
	"echohub/internal/app/user"
	"echohub/internal/configs"
)

// TokenVerifier resolves an opaque bearer token to a user id.
// The WebSocket gatekeeper consults it exactly once per connection attempt.
type TokenVerifier interface {
	VerifyToken(tokenString string) (int64, error)
}

// AppDeps bundles the collaborators every handler may need.
type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Verifier TokenVerifier
	Users    *user.Store
	Friends  *friend.Store
	Messages chat.MessageStore
	Storage  storage.StorageService
}
