package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"libraryapi/pkg/domain"
)

const migrateLockID int64 = 41204120

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent replicas do not race the schema setup. TranslateError maps
// unique-index violations to gorm.ErrDuplicatedKey, which this store
// surfaces as ErrConflict.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &BookModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	ctx := context.Background()
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("db conn: %w", err)
	}
	defer conn.Close()

	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// users

func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return userFromModel(model), nil
}

func (s *GormStore) HasUser(username, email string) (bool, error) {
	var count int64
	err := s.db.Model(&UserModel{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) GetUserByIdentifier(usernameOrEmail string) (domain.User, bool, error) {
	var model UserModel
	err := s.db.Where("username = ? OR email = ?", usernameOrEmail, usernameOrEmail).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUserByID(id int64) (domain.User, bool, error) {
	var model UserModel
	err := s.db.First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user by id: %w", err)
	}
	return userFromModel(model), true, nil
}

// books

func (s *GormStore) CreateBook(b domain.Book) (domain.Book, error) {
	model := bookToModel(b)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Book{}, ErrConflict
		}
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	return bookFromModel(model), nil
}

func (s *GormStore) GetBook(id int64) (domain.Book, bool, error) {
	var model BookModel
	err := s.db.First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Book{}, false, nil
	}
	if err != nil {
		return domain.Book{}, false, fmt.Errorf("get book: %w", err)
	}
	return bookFromModel(model), true, nil
}

// UpdateBook overwrites every field except the immutable id.
func (s *GormStore) UpdateBook(b domain.Book) (domain.Book, error) {
	model := bookToModel(b)
	res := s.db.Model(&BookModel{}).
		Where("id = ?", b.ID).
		Select("title", "author", "isbn", "published_date").
		Updates(&model)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.Book{}, ErrConflict
		}
		return domain.Book{}, fmt.Errorf("update book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Book{}, ErrNotFound
	}
	return b, nil
}

func (s *GormStore) DeleteBook(id int64) (bool, error) {
	res := s.db.Delete(&BookModel{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete book: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ListBooks(search string, offset, limit int) ([]domain.Book, error) {
	var models []BookModel
	query := bookSearchQuery(s.db, search)
	err := query.Order("title ASC").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books := make([]domain.Book, 0, len(models))
	for _, m := range models {
		books = append(books, bookFromModel(m))
	}
	return books, nil
}

func (s *GormStore) CountBooks(search string) (int64, error) {
	var count int64
	if err := bookSearchQuery(s.db, search).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

func (s *GormStore) HasISBN(isbn string, excludeID int64) (bool, error) {
	var count int64
	query := s.db.Model(&BookModel{}).Where("isbn = ?", isbn)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return count > 0, nil
}

func bookSearchQuery(db *gorm.DB, search string) *gorm.DB {
	query := db.Model(&BookModel{})
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
}
