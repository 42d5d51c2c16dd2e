// Package server exposes the REST API over the application core. Every
// catalog route validates the bearer token before dispatch; auth routes are
// public.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"libraryapi/internal/app"
	"libraryapi/internal/util"
	"libraryapi/pkg/auth"
	"libraryapi/pkg/token"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App    *app.App
	Tokens *token.Authority
}

// Server exposes HTTP endpoints for the library API.
type Server struct {
	app    *app.App
	tokens *token.Authority
	mux    *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:    cfg.App,
		tokens: cfg.Tokens,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)

	// books, all behind token validation
	s.mux.Handle("/api/books", s.authenticated(s.handleBooks))
	s.mux.Handle("/api/books/", s.authenticated(s.handleBookByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// claimsHandler receives the validated token claims for the request.
type claimsHandler func(http.ResponseWriter, *http.Request, token.Claims)

// authenticated short-circuits with 401 before the catalog service runs.
func (s *Server) authenticated(next claimsHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := s.tokens.Validate(bearer)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, claims)
	})
}

// auth handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "email is invalid")
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.app.Register(req.Username, req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UsernameOrEmail == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "usernameOrEmail and password are required")
		return
	}
	session, err := s.app.Login(req.UsernameOrEmail, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// book handlers

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request, _ token.Claims) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBooks(w, r)
	case http.MethodPost:
		s.handleCreateBook(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := query.Get("search")
	pageNumber := intQueryParam(query.Get("pageNumber"), 1)
	pageSize := intQueryParam(query.Get("pageSize"), 0)

	page, err := s.app.ListBooks(search, pageNumber, pageSize)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.TotalCount, 10))
	w.Header().Set("X-Page-Number", strconv.Itoa(page.PageNumber))
	w.Header().Set("X-Page-Size", strconv.Itoa(page.PageSize))
	w.Header().Set("X-Total-Pages", strconv.Itoa(page.TotalPages))
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeBookRequest(w, r)
	if !ok {
		return
	}
	book, err := s.app.CreateBook(input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/books/%d", book.ID))
	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request, _ token.Claims) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/books/")
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		book, err := s.app.GetBook(id)
		if errors.Is(err, app.ErrBookNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Book with ID %d not found", id))
			return
		}
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodPut:
		input, ok := decodeBookRequest(w, r)
		if !ok {
			return
		}
		book, err := s.app.UpdateBook(id, input)
		if errors.Is(err, app.ErrBookNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Book with ID %d not found", id))
			return
		}
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodDelete:
		deleted, err := s.app.DeleteBook(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Book with ID %d not found", id))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func decodeBookRequest(w http.ResponseWriter, r *http.Request) (app.BookInput, bool) {
	var req bookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return app.BookInput{}, false
	}
	if req.Title == "" || req.Author == "" || req.ISBN == "" || req.PublishedDate.IsZero() {
		writeError(w, http.StatusBadRequest, "title, author, isbn, and publishedDate are required")
		return app.BookInput{}, false
	}
	return app.BookInput{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		PublishedDate: req.PublishedDate,
	}, true
}

// writeAppError maps core errors onto HTTP statuses. Unexpected errors are
// logged with full detail and surfaced as a generic message.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrUserExists),
		errors.Is(err, app.ErrISBNExists),
		errors.Is(err, app.ErrRegistrationFields),
		errors.Is(err, app.ErrLoginFields):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrBookNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type bookRequest struct {
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	PublishedDate time.Time `json:"publishedDate"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if bearer == "" {
		return "", false
	}
	return bearer, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
