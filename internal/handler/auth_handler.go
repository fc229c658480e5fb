/*
Package handler provides HTTP handler functions for account management:
registration, login, profile updates, and account deletion.
*/
package handler

import (
	"context"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"echohub/internal/app/db"
	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/logx"
	"echohub/internal/pkg/randx"
	"echohub/internal/pkg/req"
	"echohub/internal/pkg/resp"
)

const (
	minUsernameLen = 4
	minPasswordLen = 6
	maxPasswordLen = 50
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{4,20}$`)

// defaultProfileImageKey is assigned to freshly registered accounts.
const defaultProfileImageKey = "avatars/default_profile_image.jpg"

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new account from username and password.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername, minUsernameLen))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < minPasswordLen || passwordLen > maxPasswordLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword, minPasswordLen))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		newUser, err := deps.Users.Create(r.Context(), input.Username, string(hashedPassword), defaultProfileImageKey)
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": newUser,
		})
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies user credentials and issues a JWT token.
// The token is the credential the real-time gatekeeper later verifies.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		creds, err := deps.Users.GetByUsername(r.Context(), input.Username)
		if err != nil {
			logx.Warn("login: user fetch failed", "username", input.Username, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		payload := &jwt.Payload{
			UserID:   creds.ID,
			Username: creds.Username,
		}

		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token":             token,
			"user_id":           creds.ID,
			"username":          creds.Username,
			"profile_image_url": creds.ProfileImageURL,
		})
	}
}

type UpdateProfileInput struct {
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	ProfileImageKey string `json:"profileImageKey,omitempty"`
}

// HandleUpdateProfile updates username, password, and/or profile image key.
// Empty fields keep their current values.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username != "" {
			if !usernameRegex.MatchString(input.Username) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername, minUsernameLen))
				return
			}

			taken, err := deps.Users.UsernameTakenByOther(r.Context(), input.Username, identity.UserID)
			if err != nil {
				logx.Error(err, "update_profile: username availability check failed")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			if taken {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}
		}

		var hashedPassword string
		if input.Password != "" {
			passwordLen := utf8.RuneCountInString(input.Password)
			if passwordLen < minPasswordLen || passwordLen > maxPasswordLen {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword, minPasswordLen))
				return
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			hashedPassword = string(hashed)
		}

		if input.ProfileImageKey != "" && !randx.IsAvatarObjectKey(input.ProfileImageKey) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		oldUser, err := deps.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		updated, err := deps.Users.UpdateProfile(r.Context(), identity.UserID, input.Username, hashedPassword, input.ProfileImageKey)
		if err != nil {
			logx.Error(err, "update_profile: database update failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// Drop the replaced image from the bucket, outside the request path.
		oldKey := oldUser.ProfileImageURL
		if input.ProfileImageKey != "" && oldKey != "" && oldKey != defaultProfileImageKey && oldKey != input.ProfileImageKey {
			go func(key string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.Storage.Delete(ctx, key)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": updated,
		})
	}
}

// HandleDeleteAccount removes the account together with its messages and
// friend requests.
func HandleDeleteAccount(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Users.Delete(r.Context(), identity.UserID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}

			logx.Error(err, "delete_account: database delete failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "User deleted successfully",
		})
	}
}
