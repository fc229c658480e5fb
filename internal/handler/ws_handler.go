/*
Package handler provides the HTTP handlers and routing setup for the EchoHub server.

This file contains the WebSocket gatekeeper: rate limiting, bearer-token
verification at handshake time, the protocol upgrade, and the start of the
client pumps. A connection that fails authentication is refused before the
upgrade; no room or message operation is reachable without it.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"echohub/internal/app/chat"
	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/limiter"
	"echohub/internal/pkg/logx"
	"echohub/internal/pkg/resp"
)

// handshakeToken extracts the bearer token from the upgrade request.
// Browsers cannot set headers on WebSocket requests, so the token query
// parameter is the primary carrier; the Authorization header is honored
// for non-browser clients.
func handshakeToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	return jwt.BearerToken(r)
}

// HandleWebSocket creates the HandlerFunc processing WebSocket connection requests.
// Token verification happens exactly once here, before the upgrade; the resolved
// user id is attached to the Connection for its whole lifetime.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := handshakeToken(r)
		if token == "" {
			logx.Warn("WebSocket connection rejected: missing token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		userID, err := deps.Verifier.VerifyToken(token)
		if err != nil {
			logx.Warn("WebSocket connection rejected: invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, userID)

		go client.WritePump()

		deps.Hub.Register(client)

		logx.Info("WebSocket connection established", "user_id", userID)

		client.ReadPump()
	}
}
