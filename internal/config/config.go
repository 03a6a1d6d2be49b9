package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional values fall back to the defaults
// documented next to each field.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBDriver      string // "mysql" (default), "postgres" or "sqlite"
	DBUser        string // MySQL username
	DBPass        string // MySQL password (optional)
	DBHost        string // MySQL host address
	DBPort        string // MySQL port number
	DBName        string // MySQL database name
	DatabaseURL   string // DSN for postgres, file path for sqlite
	DBLogSQL      bool   // log every statement instead of slow ones only
	DBAutoMigrate bool   // create/alter tables on startup (default true)

	JWTSecret    string        // secret used to verify session JWTs
	AccessTTLMin int           // lifetime of tokens minted by tokenctl, in minutes
	TxTimeout    time.Duration // upper bound for a single database transaction

	LogLevel  string // debug, info, warn, error
	LogFormat string // json (default) or text
	Timezone  string // IANA zone used to interpret departure date+time
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when present.
// Required variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBDriver:      strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBPass:        os.Getenv("DB_PASS"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBLogSQL:      envBool("DB_LOG_SQL", false),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", true),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		TxTimeout:    envDur("TX_TIMEOUT", 10*time.Second),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
		Timezone:  envStr("TIMEZONE", "UTC"),
	}

	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case "postgres", "sqlite":
		cfg.DatabaseURL = must("DATABASE_URL")
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	return cfg
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
