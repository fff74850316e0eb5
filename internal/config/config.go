package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Store   StoreConfig
	Sheets  SheetsConfig
	Import  ImportConfig
	WebDir  string
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// StoreConfig selects and addresses the account store.
type StoreConfig struct {
	Driver        string // postgres, mongo or memory
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

// SheetsConfig describes where spreadsheet tabs are read from.
type SheetsConfig struct {
	Source             string // google or xlsx
	LayoutPath         string
	XLSXPath           string
	OAuthClientFile    string
	OAuthRedirectURL   string
	OAuthTokenFile     string
	ServiceAccountFile string
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	SaveConcurrency int
	// Interval schedules a re-import of every configured network; zero disables it.
	Interval time.Duration
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultStoreDriver     = "postgres"
	defaultMongoDatabase   = "socialpulse"
	defaultSheetsSource    = "google"
	defaultLayoutPath      = "./config/sheets.yaml"
	defaultSaveConcurrency = 8
	defaultWebDir          = "./web"
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", defaultStoreDriver),
			MongoURI:      os.Getenv("MONGO_URI"),
			MongoDatabase: getEnv("MONGO_DATABASE", defaultMongoDatabase),
		},
		Sheets: SheetsConfig{
			Source:             getEnv("SHEETS_SOURCE", defaultSheetsSource),
			LayoutPath:         getEnv("SHEETS_CONFIG", defaultLayoutPath),
			XLSXPath:           os.Getenv("XLSX_PATH"),
			OAuthClientFile:    os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
			OAuthRedirectURL:   os.Getenv("GOOGLE_OAUTH_REDIRECT_URL"),
			OAuthTokenFile:     os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"),
			ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		},
		Import: ImportConfig{
			SaveConcurrency: defaultSaveConcurrency,
		},
		WebDir: getEnv("WEB_DIR", defaultWebDir),
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("IMPORT_SAVE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid IMPORT_SAVE_CONCURRENCY: must be a positive integer")
		}
		cfg.Import.SaveConcurrency = n
	}

	if v := os.Getenv("IMPORT_INTERVAL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 0 {
			return Config{}, fmt.Errorf("invalid IMPORT_INTERVAL_MINUTES: must be a non-negative integer")
		}
		cfg.Import.Interval = time.Duration(minutes) * time.Minute
	}

	switch cfg.Store.Driver {
	case "postgres":
		url, err := buildDatabaseURL()
		if err != nil {
			return Config{}, fmt.Errorf("invalid postgres settings: %w", err)
		}
		cfg.Store.DatabaseURL = url
	case "mongo":
		if cfg.Store.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER: must be 'postgres', 'mongo' or 'memory'")
	}

	switch cfg.Sheets.Source {
	case "google":
	case "xlsx":
		if cfg.Sheets.XLSXPath == "" {
			return Config{}, fmt.Errorf("XLSX_PATH is required when SHEETS_SOURCE=xlsx")
		}
	default:
		return Config{}, fmt.Errorf("invalid SHEETS_SOURCE: must be 'google' or 'xlsx'")
	}

	return cfg, nil
}

// buildDatabaseURL accepts either DATABASE_URL directly or the Cloud SQL
// socket triplet (INSTANCE_CONNECTION_NAME, DB_USER, DB_NAME, DB_PASSWORD).
func buildDatabaseURL() (string, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL, nil
	}

	instance := os.Getenv("INSTANCE_CONNECTION_NAME")
	if instance == "" {
		return "", fmt.Errorf("neither DATABASE_URL nor INSTANCE_CONNECTION_NAME is set")
	}

	user := os.Getenv("DB_USER")
	name := os.Getenv("DB_NAME")
	if user == "" || name == "" {
		return "", fmt.Errorf("DB_USER and DB_NAME must be set when using INSTANCE_CONNECTION_NAME")
	}

	parts := []string{
		"host=/cloudsql/" + instance,
		"user=" + user,
	}
	if pw := os.Getenv("DB_PASSWORD"); pw != "" {
		parts = append(parts, "password="+pw)
	}
	parts = append(parts, "dbname="+name, "sslmode=disable")

	return strings.Join(parts, " "), nil
}

// RedactURL hides the password of a postgres:// style URL for logging.
func RedactURL(connStr string) string {
	if !strings.HasPrefix(connStr, "postgresql://") && !strings.HasPrefix(connStr, "postgres://") &&
		!strings.HasPrefix(connStr, "mongodb://") && !strings.HasPrefix(connStr, "mongodb+srv://") {
		if i := strings.Index(connStr, "password="); i >= 0 {
			end := strings.IndexByte(connStr[i:], ' ')
			if end < 0 {
				return connStr[:i] + "password=***"
			}
			return connStr[:i] + "password=***" + connStr[i+end:]
		}
		return connStr
	}

	scheme, rest, _ := strings.Cut(connStr, "://")
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return connStr
	}
	user, _, hasPassword := strings.Cut(creds, ":")
	if !hasPassword {
		return connStr
	}
	return scheme + "://" + user + ":***@" + host
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
