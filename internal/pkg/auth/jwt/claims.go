package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token claims issued by EchoHub.
// It carries the standard claims required by the JWT specification plus the
// numeric user id that every authenticated surface (REST and WebSocket)
// resolves the caller from.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), which drive token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the registered user's immutable database id.
	UserID int64 `json:"user_id"`

	// Username is the display name at issue time. Informational only; the
	// authoritative value lives in the user directory.
	Username string `json:"username,omitempty"`
}
