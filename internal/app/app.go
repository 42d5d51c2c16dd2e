// Package app implements the core auth and catalog services behind the HTTP
// layer.
package app

import (
	"fmt"
	"time"

	"libraryapi/pkg/store"
	"libraryapi/pkg/token"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	TokenSecret   string
	TokenIssuer   string
	TokenAudience string
	TokenTTL      time.Duration
	TokenLeeway   time.Duration

	// Store and Tokens override the defaults built from the fields above;
	// tests inject a MemoryStore and a fixed-secret authority here.
	Store  store.Store
	Tokens *token.Authority
}

// App wires together storage, password hashing, and token issuance.
type App struct {
	store  store.Store
	tokens *token.Authority
}

// New constructs the application with database storage and a token authority.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		var err error
		tokens, err = token.NewAuthority(token.Config{
			Secret:   cfg.TokenSecret,
			Issuer:   cfg.TokenIssuer,
			Audience: cfg.TokenAudience,
			TTL:      cfg.TokenTTL,
			Leeway:   cfg.TokenLeeway,
		})
		if err != nil {
			return nil, fmt.Errorf("init token authority: %w", err)
		}
	}

	return &App{
		store:  dataStore,
		tokens: tokens,
	}, nil
}

// Tokens exposes the token authority so the HTTP layer can validate bearer
// tokens before dispatching catalog requests.
func (a *App) Tokens() *token.Authority {
	return a.tokens
}
