package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/words-blog/config"
	"github.com/rpupo63/words-blog/models"
)

type Database struct {
	db           *gorm.DB
	postRepo     *PostRepo
	categoryRepo *CategoryRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		postRepo:     NewPostRepo(db),
		categoryRepo: NewCategoryRepo(db),
	}
}

// Open connects to the database described by cfg and verifies the connection.
func Open(cfg config.Config) (*gorm.DB, error) {
	gormLog := log.With().Str("component", "gorm").Logger()
	newLogger := logger.New(
		&gormLog,
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch cfg.DBType {
	case config.DBTypePostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
	case config.DBTypeSQLite:
		dialector = sqlite.Open(sqliteDSN(config.SQLitePath(cfg.DatabaseURL)))
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBType, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBType == config.DBTypeSQLite {
		// sqlite allows a single writer; one connection also keeps an
		// in-memory database alive for the lifetime of the pool.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
	}

	if len(cfg.ReplicaURLs) > 0 {
		if err := useReplicas(db, cfg); err != nil {
			return nil, err
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// useReplicas routes reads to the configured replicas; writes and
// transactions stay on the primary.
func useReplicas(db *gorm.DB, cfg config.Config) error {
	if cfg.DBType != config.DBTypePostgres {
		log.Warn().Str("dbType", cfg.DBType).Msg("Read replicas are only supported for postgres, ignoring DATABASE_REPLICA_URLS")
		return nil
	}

	replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaURLs))
	for _, dsn := range cfg.ReplicaURLs {
		replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
	}

	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).SetMaxOpenConns(20).SetMaxIdleConns(5))
	if err != nil {
		return fmt.Errorf("register read replicas: %w", err)
	}

	log.Info().Int("replicas", len(replicas)).Msg("Read replicas registered")
	return nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Accessor methods for each repository

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

// Transaction runs fn with a Database whose repositories share one transaction.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Migrate creates or updates the schema for all models.
func (d Database) Migrate() error {
	return models.Migrate(d.db)
}

// Ping checks that the primary database is reachable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
