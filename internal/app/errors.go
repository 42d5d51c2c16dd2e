package app

import "errors"

var (
	// ErrInvalidCredentials is returned for both an unknown identifier and a
	// wrong password so that callers cannot enumerate accounts.
	// The message is intended to be shown to end users.
	ErrInvalidCredentials = errors.New("Invalid username/email or password")

	// ErrUserExists is returned when the username or the email is already
	// taken. Which of the two collided is deliberately not disclosed.
	ErrUserExists = errors.New("Username or email already exists")

	// ErrISBNExists is returned when creating or updating a book would
	// duplicate an existing ISBN.
	ErrISBNExists = errors.New("A book with this ISBN already exists")

	ErrBookNotFound = errors.New("book not found")

	ErrRegistrationFields = errors.New("username, email, and password required")
	ErrLoginFields        = errors.New("username/email and password required")
)
