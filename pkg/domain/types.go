package domain

import "time"

// User is a registered account. The password hash never leaves the service.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Book is a catalog record. ISBN is unique across the whole catalog.
type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	PublishedDate time.Time `json:"publishedDate"`
}

// AuthSession is the result of a successful registration or login.
type AuthSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// BookPage is one page of catalog results plus pagination metadata.
// TotalCount reflects the filtered set before pagination.
type BookPage struct {
	Items      []Book `json:"items"`
	TotalCount int64  `json:"totalCount"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}
