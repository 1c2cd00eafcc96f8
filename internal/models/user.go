package models

// User represents a registered user.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address. Optional.
	Email string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}
