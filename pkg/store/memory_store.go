package store

import (
	"sort"
	"strings"
	"sync"

	"libraryapi/pkg/domain"
)

// MemoryStore keeps users and books in-process. It enforces the same
// uniqueness constraints as the Postgres store and is safe for concurrent
// use, which makes it a drop-in Store for tests.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]domain.User
	books      map[int64]domain.Book
	nextUserID int64
	nextBookID int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]domain.User),
		books: make(map[int64]domain.Book),
	}
}

// users

func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.User{}, ErrConflict
		}
	}
	m.nextUserID++
	u.ID = m.nextUserID
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) HasUser(username, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) GetUserByIdentifier(usernameOrEmail string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == usernameOrEmail || u.Email == usernameOrEmail {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByID(id int64) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// books

func (m *MemoryStore) CreateBook(b domain.Book) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.books {
		if existing.ISBN == b.ISBN {
			return domain.Book{}, ErrConflict
		}
	}
	m.nextBookID++
	b.ID = m.nextBookID
	m.books[b.ID] = b
	return b, nil
}

func (m *MemoryStore) GetBook(id int64) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

func (m *MemoryStore) UpdateBook(b domain.Book) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return domain.Book{}, ErrNotFound
	}
	for id, existing := range m.books {
		if id != b.ID && existing.ISBN == b.ISBN {
			return domain.Book{}, ErrConflict
		}
	}
	m.books[b.ID] = b
	return b, nil
}

func (m *MemoryStore) DeleteBook(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return false, nil
	}
	delete(m.books, id)
	return true, nil
}

func (m *MemoryStore) ListBooks(search string, offset, limit int) ([]domain.Book, error) {
	m.mu.RLock()
	matched := m.matchBooks(search)
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Title != matched[j].Title {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].ID < matched[j].ID
	})
	if offset >= len(matched) {
		return []domain.Book{}, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryStore) CountBooks(search string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.matchBooks(search))), nil
}

func (m *MemoryStore) HasISBN(isbn string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, b := range m.books {
		if id != excludeID && b.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

// matchBooks must be called with the lock held.
func (m *MemoryStore) matchBooks(search string) []domain.Book {
	search = strings.ToLower(strings.TrimSpace(search))
	matched := make([]domain.Book, 0, len(m.books))
	for _, b := range m.books {
		if search == "" ||
			strings.Contains(strings.ToLower(b.Title), search) ||
			strings.Contains(strings.ToLower(b.Author), search) {
			matched = append(matched, b)
		}
	}
	return matched
}
