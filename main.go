package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	api "github.com/rpupo63/words-blog/api"
	"github.com/rpupo63/words-blog/config"
	"github.com/rpupo63/words-blog/database"
	"github.com/rpupo63/words-blog/errs"
	"github.com/rpupo63/words-blog/models"
)

func main() {
	if err := run(); err != nil {
		if errs.IsConfigError(err) {
			log.Error().Err(err).Msg("Check the environment or .env file")
		}
		log.Error().Err(err).Msg("Exiting")
		os.Exit(1)
	}
}

func run() error {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	env := config.New()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if prefix := env["SSM_PARAMETER_PREFIX"]; prefix != "" {
		client, err := config.NewSSMClient(ctx, env["AWS_REGION"])
		if err != nil {
			return err
		}
		if err := config.LoadSecrets(ctx, client, prefix, env); err != nil {
			return err
		}
	}

	cfg, err := config.Load(env)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	log.Info().Str("dbType", cfg.DBType).Msg("Connecting to database...")
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}

	// If generating models, run generation and exit
	if cfg.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		return models.GenerateModels(db, "./query")
	}

	// If generating column mismatch report, run report and exit
	if cfg.GenerateColumnReport {
		log.Info().Msg("Generating column mismatch report...")
		_, err := models.LogColumnMismatchReport(db)
		return err
	}

	currentDB := database.New(db)
	if err := currentDB.Migrate(); err != nil {
		return err
	}

	server, err := api.NewServer(cfg, currentDB)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.ShutdownGracefully(cfg.ShutdownTimeout)
	})

	return g.Wait()
}

// setupLogger configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT.
func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
