package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"libraryapi/internal/app"
	"libraryapi/internal/config"
	"libraryapi/internal/server"
	"libraryapi/internal/util"
	"libraryapi/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}
	jwtLeeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse JWT leeway: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	if cfg.SeedSampleBooks {
		if err := store.SeedBooks(dataStore); err != nil {
			log.Fatalf("failed to seed books: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		TokenSecret:   cfg.JWTSecret,
		TokenIssuer:   cfg.JWTIssuer,
		TokenAudience: cfg.JWTAudience,
		TokenTTL:      tokenTTL,
		TokenLeeway:   jwtLeeway,
		Store:         dataStore,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App:    appCore,
		Tokens: appCore.Tokens(),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("library api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
