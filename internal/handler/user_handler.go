package handler

import (
	"net/http"
	"path/filepath"

	"echohub/internal/app/storage"
	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/logx"
	"echohub/internal/pkg/randx"
	"echohub/internal/pkg/req"
	"echohub/internal/pkg/resp"
)

// HandleListUsers returns every other registered account, annotated with
// live connection state so the contact list can show who is reachable.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		users, err := deps.Users.ListOthers(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "list_users: database query failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// The hub is the authority on who is connected right now; the
		// persisted flag only survives for restarts.
		for i := range users {
			users[i].Online = deps.Hub.IsOnline(users[i].UserID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": users,
		})
	}
}

type AvatarUploadInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandleAvatarUploadURL validates the declared image metadata and returns a
// presigned upload URL plus the object key the client should store on its
// profile once the upload succeeds.
func HandleAvatarUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input AvatarUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateImageType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateImageSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := randx.AvatarObjectKey(filepath.Ext(input.FileName))

		uploadURL, err := deps.Storage.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "avatar_upload: presign failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
		})
	}
}

// HandleAvatarDownloadURL resolves a stored avatar key to a short-lived
// download URL.
func HandleAvatarDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		key := r.URL.Query().Get("key")
		if !randx.IsAvatarObjectKey(key) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		downloadURL, err := deps.Storage.PresignDownload(r.Context(), key, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "avatar_download: presign failed", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": downloadURL,
		})
	}
}
