package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"libraryapi/pkg/domain"
	"libraryapi/pkg/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// BookInput carries the writable book fields for create and update.
type BookInput struct {
	Title         string
	Author        string
	ISBN          string
	PublishedDate time.Time
}

// ListBooks returns one page of the catalog, filtered by an optional
// case-insensitive substring match on title or author and ordered by title.
// pageNumber clamps to a minimum of 1; pageSize out of [1,100] falls back
// to 10. TotalCount covers the whole filtered set, not just this page.
func (a *App) ListBooks(search string, pageNumber, pageSize int) (domain.BookPage, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	offset := (pageNumber - 1) * pageSize
	items, err := a.store.ListBooks(search, offset, pageSize)
	if err != nil {
		return domain.BookPage{}, fmt.Errorf("list books: %w", err)
	}
	total, err := a.store.CountBooks(search)
	if err != nil {
		return domain.BookPage{}, fmt.Errorf("count books: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return domain.BookPage{
		Items:      items,
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetBook returns the book or ErrBookNotFound.
func (a *App) GetBook(id int64) (domain.Book, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("get book: %w", err)
	}
	if !ok {
		return domain.Book{}, ErrBookNotFound
	}
	return book, nil
}

// CreateBook inserts a new catalog record. The ISBN pre-check gives a fast
// conflict error; the store's unique index catches any race that slips past.
func (a *App) CreateBook(input BookInput) (domain.Book, error) {
	taken, err := a.store.HasISBN(input.ISBN, 0)
	if err != nil {
		return domain.Book{}, fmt.Errorf("check isbn: %w", err)
	}
	if taken {
		return domain.Book{}, ErrISBNExists
	}
	book, err := a.store.CreateBook(domain.Book{
		Title:         input.Title,
		Author:        input.Author,
		ISBN:          input.ISBN,
		PublishedDate: input.PublishedDate,
	})
	if errors.Is(err, store.ErrConflict) {
		return domain.Book{}, ErrISBNExists
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	slog.Info("book created", "id", book.ID, "title", book.Title)
	return book, nil
}

// UpdateBook overwrites every field of an existing record; the id is
// immutable. A changed ISBN is re-checked against all other records.
func (a *App) UpdateBook(id int64, input BookInput) (domain.Book, error) {
	current, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("get book: %w", err)
	}
	if !ok {
		return domain.Book{}, ErrBookNotFound
	}
	if input.ISBN != current.ISBN {
		taken, err := a.store.HasISBN(input.ISBN, id)
		if err != nil {
			return domain.Book{}, fmt.Errorf("check isbn: %w", err)
		}
		if taken {
			return domain.Book{}, ErrISBNExists
		}
	}

	updated, err := a.store.UpdateBook(domain.Book{
		ID:            id,
		Title:         input.Title,
		Author:        input.Author,
		ISBN:          input.ISBN,
		PublishedDate: input.PublishedDate,
	})
	if errors.Is(err, store.ErrConflict) {
		return domain.Book{}, ErrISBNExists
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Book{}, ErrBookNotFound
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("update book: %w", err)
	}
	slog.Info("book updated", "id", id)
	return updated, nil
}

// DeleteBook removes the record, reporting false (not an error) when the id
// does not exist.
func (a *App) DeleteBook(id int64) (bool, error) {
	deleted, err := a.store.DeleteBook(id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	if deleted {
		slog.Info("book deleted", "id", id)
	}
	return deleted, nil
}
