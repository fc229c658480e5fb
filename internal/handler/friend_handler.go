package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"echohub/internal/app/friend"
	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/logx"
	"echohub/internal/pkg/req"
	"echohub/internal/pkg/resp"
)

type FriendRequestInput struct {
	ToUserID int64 `json:"toUserId"`
}

// HandleSendFriendRequest records a pending friend request toward another user.
func HandleSendFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input FriendRequestInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ToUserID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.ToUserID == identity.UserID {
			resp.RespondError(w, r, errs.NewError(errs.ErrSelfFriendRequest))
			return
		}

		request, err := deps.Friends.CreateRequest(r.Context(), identity.UserID, input.ToUserID)
		if err != nil {
			if errors.Is(err, friend.ErrAlreadyExists) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFriendRequestExists))
				return
			}

			logx.Error(err, "friend_request: create failed", "from", identity.UserID, "to", input.ToUserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"request": request,
		})
	}
}

// HandleAcceptFriendRequest marks an incoming pending request as accepted.
// Only the addressee of the request may accept it.
func HandleAcceptFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		requestID, err := strconv.ParseInt(chi.URLParam(r, "requestId"), 10, 64)
		if err != nil || requestID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		accepted, err := deps.Friends.AcceptRequest(r.Context(), requestID, identity.UserID)
		if err != nil {
			if errors.Is(err, friend.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFriendRequestNotFound))
				return
			}

			logx.Error(err, "friend_request: accept failed", "request_id", requestID, "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"request": accepted,
		})
	}
}

// HandleRejectFriendRequest deletes an incoming pending request without
// creating a friendship.
func HandleRejectFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		requestID, err := strconv.ParseInt(chi.URLParam(r, "requestId"), 10, 64)
		if err != nil || requestID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Friends.RejectRequest(r.Context(), requestID, identity.UserID); err != nil {
			if errors.Is(err, friend.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFriendRequestNotFound))
				return
			}

			logx.Error(err, "friend_request: reject failed", "request_id", requestID, "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Friend request rejected",
		})
	}
}

// HandleRemoveFriend dissolves an accepted friendship with the given user.
func HandleRemoveFriend(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		friendID, err := strconv.ParseInt(chi.URLParam(r, "friendUserId"), 10, 64)
		if err != nil || friendID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Friends.RemoveFriendship(r.Context(), identity.UserID, friendID); err != nil {
			if errors.Is(err, friend.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFriendshipNotFound))
				return
			}

			logx.Error(err, "friendship: remove failed", "user_id", identity.UserID, "friend_id", friendID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Friend removed",
		})
	}
}

// HandleListFriends returns the accepted friends of the caller, annotated
// with live connection state.
func HandleListFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		friends, err := deps.Friends.ListFriends(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "friends: list failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		for i := range friends {
			friends[i].Online = deps.Hub.IsOnline(friends[i].UserID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"friends": friends,
		})
	}
}

// HandleListFriendRequests returns pending requests addressed to the caller.
func HandleListFriendRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		requests, err := deps.Friends.ListPending(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "friend_requests: list failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"requests": requests,
		})
	}
}
