/*
Package user contains the user directory: account rows, credential hashes,
and the persisted online flag updated by the relay's presence lifecycle.
*/
package user

import "time"

// User represents one registered account.
type User struct {
	// ID is the immutable database identity.
	ID int64 `json:"user_id"`

	// Username is the unique, mutable display name.
	Username string `json:"username"`

	// ProfileImageURL is the S3 object key of the profile image, or "".
	ProfileImageURL string `json:"profile_image_url"`

	// Online mirrors the relay's presence registry; best-effort, persisted
	// so collaborators outside the serving process can read it.
	Online bool `json:"online"`

	// CreatedAt is the account creation time.
	CreatedAt time.Time `json:"created_at"`
}

// Credentials carries the stored password hash alongside the account row.
// Never serialized to clients.
type Credentials struct {
	User
	PasswordHash string
}

// DirectoryEntry is the listing shape returned to clients browsing users,
// annotated with live presence.
type DirectoryEntry struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}
