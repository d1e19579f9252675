package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rpupo63/words-blog/errs"
)

const (
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"

	defaultDatabaseURL = "sqlite://blog.db"
)

// Config is the application configuration, built once at startup and
// passed explicitly to every component that needs it.
type Config struct {
	Port string

	DBType      string
	DatabaseURL string
	ReplicaURLs []string

	AdminPassword   string
	SecretKey       string
	SessionLifetime time.Duration
	SecureCookies   bool

	AcceptedOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	GenerateModels       bool
	GenerateColumnReport bool
}

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// Load builds a Config from an environment map as returned by New.
func Load(env map[string]string) (Config, error) {
	cfg := Config{
		Port:            GetString(env, "PORT", "8080"),
		DatabaseURL:     GetString(env, "DATABASE_URL", defaultDatabaseURL),
		ReplicaURLs:     GetList(env, "DATABASE_REPLICA_URLS"),
		AdminPassword:   GetString(env, "ADMIN_PASSWORD", ""),
		SecretKey:       GetString(env, "SECRET_KEY", ""),
		SessionLifetime: time.Duration(GetInt(env, "SESSION_LIFETIME_HOURS", 31*24)) * time.Hour,
		SecureCookies:   GetBool(env, "SECURE_COOKIES", false),
		AcceptedOrigins: GetList(env, "ACCEPTED_ORIGINS"),
		ReadTimeout:     time.Duration(GetInt(env, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout:    time.Duration(GetInt(env, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:     time.Duration(GetInt(env, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,
		ShutdownTimeout: time.Duration(GetInt(env, "SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
		LogLevel:        strings.ToLower(GetString(env, "LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(GetString(env, "LOG_FORMAT", "console")),

		GenerateModels:       GetBool(env, "GENERATE_MODELS", false),
		GenerateColumnReport: GetBool(env, "GENERATE_COLUMN_REPORT", false),
	}

	if cfg.AdminPassword == "" {
		return Config{}, errs.NewConfigMissingError("ADMIN_PASSWORD")
	}
	if cfg.SecretKey == "" {
		return Config{}, errs.NewConfigMissingError("SECRET_KEY")
	}
	if cfg.SessionLifetime <= 0 {
		return Config{}, errs.NewConfigInvalidError("SESSION_LIFETIME_HOURS", GetString(env, "SESSION_LIFETIME_HOURS", ""), nil)
	}

	dbType := strings.ToLower(GetString(env, "DB_TYPE", ""))
	if dbType == "" {
		var err error
		dbType, err = DetectDBType(cfg.DatabaseURL)
		if err != nil {
			return Config{}, err
		}
	}
	switch dbType {
	case DBTypePostgres, DBTypeSQLite:
		cfg.DBType = dbType
	default:
		return Config{}, errs.NewConfigInvalidError("DB_TYPE", dbType, nil)
	}

	return cfg, nil
}

// DetectDBType infers the database driver from the scheme of a database URL.
func DetectDBType(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", errs.NewConfigInvalidError("DATABASE_URL", databaseURL, err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return DBTypePostgres, nil
	case "sqlite", "sqlite3", "file", "":
		return DBTypeSQLite, nil
	}
	return "", errs.NewConfigInvalidError("DATABASE_URL", databaseURL, nil)
}

// SQLitePath turns sqlite://blog.db, sqlite:///var/blog.db or a bare path
// into the file name the driver expects.
func SQLitePath(databaseURL string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if rest, ok := strings.CutPrefix(databaseURL, prefix); ok {
			return rest
		}
	}
	return databaseURL
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetList splits a comma separated value, dropping empty entries.
func GetList(config map[string]string, key string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
