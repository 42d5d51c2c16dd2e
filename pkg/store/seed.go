package store

import (
	"fmt"
	"time"

	"libraryapi/pkg/domain"
)

// SampleBooks returns the starter catalog used for fresh installs.
func SampleBooks() []domain.Book {
	date := func(year, month, day int) time.Time {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	return []domain.Book{
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "978-0-7432-7356-5", PublishedDate: date(1925, 4, 10)},
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "978-0-06-112008-4", PublishedDate: date(1960, 7, 11)},
		{Title: "1984", Author: "George Orwell", ISBN: "978-0-452-28423-4", PublishedDate: date(1949, 6, 8)},
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "978-0-14-143951-8", PublishedDate: date(1813, 1, 28)},
		{Title: "The Catcher in the Rye", Author: "J.D. Salinger", ISBN: "978-0-316-76948-0", PublishedDate: date(1951, 7, 16)},
		{Title: "Lord of the Flies", Author: "William Golding", ISBN: "978-0-571-05686-5", PublishedDate: date(1954, 9, 17)},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "978-0-544-00017-3", PublishedDate: date(1937, 9, 21)},
		{Title: "Brave New World", Author: "Aldous Huxley", ISBN: "978-0-06-085052-4", PublishedDate: date(1932, 1, 1)},
	}
}

// SeedBooks inserts the sample catalog when the store holds no books yet.
func SeedBooks(s Store) error {
	count, err := s.CountBooks("")
	if err != nil {
		return fmt.Errorf("seed: count books: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, b := range SampleBooks() {
		if _, err := s.CreateBook(b); err != nil {
			return fmt.Errorf("seed: create %q: %w", b.Title, err)
		}
	}
	return nil
}
