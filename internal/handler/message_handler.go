package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/logx"
	"echohub/internal/pkg/resp"
)

// HandleGetMessages serves conversation history over plain HTTP. The
// WebSocket getPastMessages event is the primary path; this endpoint backs
// clients that render history before the socket is up.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		contactID, err := strconv.ParseInt(chi.URLParam(r, "contactUserId"), 10, 64)
		if err != nil || contactID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidContactID))
			return
		}

		if contactID == identity.UserID {
			resp.RespondError(w, r, errs.NewError(errs.ErrSelfConversation))
			return
		}

		messages, err := deps.Messages.Range(r.Context(), identity.UserID, contactID)
		if err != nil {
			logx.Error(err, "messages: history query failed", "user_id", identity.UserID, "contact_id", contactID)
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageFetchFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}
