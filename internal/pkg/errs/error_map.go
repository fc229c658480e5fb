/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Messaging Business Logic Errors
	ErrInvalidContactID:   {Code: ErrInvalidContactID, Message: "Invalid contact.", Status: http.StatusBadRequest},
	ErrSelfConversation:   {Code: ErrSelfConversation, Message: "You cannot message yourself.", Status: http.StatusBadRequest},
	ErrMessageFetchFailed: {Code: ErrMessageFetchFailed, Message: "Failed to fetch past messages.", Status: http.StatusInternalServerError},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Username must be at least %d characters long."},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be at least %d characters long."},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username is already taken."},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid username or password."},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrSessionKicked:      {Code: ErrSessionKicked, Message: "You were signed in on another device."},

	// 4xxx: Friend Workflow Errors
	ErrSelfFriendRequest:     {Code: ErrSelfFriendRequest, Message: "You can't send a friend request to yourself.", Status: http.StatusBadRequest},
	ErrFriendRequestExists:   {Code: ErrFriendRequestExists, Message: "Friend request already sent or you are already friends.", Status: http.StatusBadRequest},
	ErrFriendRequestNotFound: {Code: ErrFriendRequestNotFound, Message: "Friend request not found or already handled.", Status: http.StatusNotFound},
	ErrFriendshipNotFound:    {Code: ErrFriendshipNotFound, Message: "Friendship not found.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
}
