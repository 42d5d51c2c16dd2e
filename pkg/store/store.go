package store

import (
	"errors"

	"libraryapi/pkg/domain"
)

// ErrConflict signals a uniqueness violation (username, email, or ISBN).
// Implementations must return it when the underlying constraint rejects a
// write, so that racing duplicate submissions resolve to the same outcome
// as the service-level pre-checks.
var ErrConflict = errors.New("uniqueness conflict")

// ErrNotFound signals that a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines persistence operations for users and books.
//
// The user store enforces uniqueness on username and email, the book store
// on ISBN. Those constraints are the final arbiter; callers may pre-check
// for friendlier errors but must handle ErrConflict from writes.
type Store interface {
	// users
	CreateUser(u domain.User) (domain.User, error)
	HasUser(username, email string) (bool, error)
	GetUserByIdentifier(usernameOrEmail string) (domain.User, bool, error)
	GetUserByID(id int64) (domain.User, bool, error)

	// books
	CreateBook(b domain.Book) (domain.Book, error)
	GetBook(id int64) (domain.Book, bool, error)
	UpdateBook(b domain.Book) (domain.Book, error)
	DeleteBook(id int64) (bool, error)
	ListBooks(search string, offset, limit int) ([]domain.Book, error)
	CountBooks(search string) (int64, error)
	HasISBN(isbn string, excludeID int64) (bool, error)
}
