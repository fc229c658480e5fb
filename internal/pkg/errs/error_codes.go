/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally within
the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Messaging Business Logic Errors
const (
	// ErrInvalidContactID indicates that the counterpart user id of a conversation is malformed.
	ErrInvalidContactID = 2101

	// ErrSelfConversation indicates an attempt to open a conversation with oneself.
	ErrSelfConversation = 2102

	// ErrMessageFetchFailed indicates that reading conversation history from the store failed.
	ErrMessageFetchFailed = 2201
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing, malformed, or expired bearer token.
	ErrUnauthorized = 3001

	// ErrAlreadyLoggedIn indicates that an authenticated user attempted to register or log in again.
	ErrAlreadyLoggedIn = 3002

	// ErrInvalidUsername indicates that the supplied username fails validation.
	ErrInvalidUsername = 3003

	// ErrInvalidPassword indicates that the supplied password fails validation.
	ErrInvalidPassword = 3004

	// ErrUserAlreadyExists indicates that the requested username is already taken.
	ErrUserAlreadyExists = 3005

	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = 3006

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3007

	// ErrSessionKicked indicates that the current connection was replaced by a newer one.
	ErrSessionKicked = 3008
)

// 4xxx: Friend Workflow Errors
const (
	// ErrSelfFriendRequest indicates an attempt to send a friend request to oneself.
	ErrSelfFriendRequest = 4001

	// ErrFriendRequestExists indicates a duplicate friend request or an existing friendship.
	ErrFriendRequestExists = 4002

	// ErrFriendRequestNotFound indicates that the referenced friend request does not exist or was already handled.
	ErrFriendRequestNotFound = 4003

	// ErrFriendshipNotFound indicates that no accepted friendship exists between the two users.
	ErrFriendshipNotFound = 4004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a failure talking to the object storage service.
	ErrFileStorageFailed = 5001
)
