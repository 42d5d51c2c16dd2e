package store

import (
	"time"

	"libraryapi/pkg/domain"
)

// GORM models used for persistence. Unique indexes on username, email, and
// isbn back the uniqueness invariants.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type BookModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Title         string    `gorm:"not null"`
	Author        string    `gorm:"not null"`
	ISBN          string    `gorm:"column:isbn;uniqueIndex;not null"`
	PublishedDate time.Time `gorm:"not null"`
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		ISBN:          b.ISBN,
		PublishedDate: b.PublishedDate,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ID:            m.ID,
		Title:         m.Title,
		Author:        m.Author,
		ISBN:          m.ISBN,
		PublishedDate: m.PublishedDate,
	}
}
