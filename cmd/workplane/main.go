package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/workplane-dev/workplane/internal/auth"
	"github.com/workplane-dev/workplane/internal/blob"
	"github.com/workplane-dev/workplane/internal/config"
	"github.com/workplane-dev/workplane/internal/handlers"
	"github.com/workplane-dev/workplane/internal/mail"
	"github.com/workplane-dev/workplane/internal/router"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/store/surreal"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	log = log.Level(level)

	ctx := context.Background()

	st, err := surreal.New(ctx, surreal.Config{
		URL:       cfg.SurrealURL,
		Namespace: cfg.SurrealNamespace,
		Database:  cfg.SurrealDatabase,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	})
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.SurrealURL).Msg("failed to connect to SurrealDB")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close SurrealDB connection")
		}
	}()

	files, err := blob.NewLocalStore(cfg.StorageRoot)
	if err != nil {
		log.Fatal().Err(err).Str("root", cfg.StorageRoot).Msg("failed to prepare storage root")
	}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = &mail.SMTP{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.SMTPFrom,
			PublicURL: cfg.PublicURL,
		}
	} else {
		log.Warn().Msg("SMTP_HOST not set, invitation mail disabled")
		mailer = &mail.Nop{Log: log}
	}

	svc := service.New(st, mailer, log)
	mgr := auth.NewManager(cfg.JWTSecret)
	h := handlers.New(svc, st, mgr, files, cfg.CookieDomain, log)

	r := router.New(h, mgr, st, cfg.AllowedOrigins)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
