package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr           string
	DatabasePath   string
	Debug          bool
	LogLevel       string
	AllowedOrigins []string

	// AdminSecret signs operator JWTs. When empty the API runs without auth.
	AdminSecret string
	// AdminPasswordHash is the bcrypt hash of the admin password. Required
	// when AdminSecret is set.
	AdminPasswordHash string

	// ADBPath is the adb binary used for device control.
	ADBPath string
	// ADBTimeout bounds a single adb command.
	ADBTimeout time.Duration

	// SessionTTL is the idle lifetime of a calibration session before the
	// sweep removes it.
	SessionTTL time.Duration

	// MaxRetries is the default attempt count for automated posting.
	MaxRetries int
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	Debug        *bool
	SessionTTL   *time.Duration
}

// Load loads server configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 8000
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		port = p
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./careon.db"
	}
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	adbPath := os.Getenv("ADB_PATH")
	if adbPath == "" {
		adbPath = "adb"
	}

	adbTimeout := 30 * time.Second
	if s := os.Getenv("ADB_TIMEOUT_SECONDS"); s != "" {
		secs, err := strconv.Atoi(s)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid ADB_TIMEOUT_SECONDS %q", s)
		}
		adbTimeout = time.Duration(secs) * time.Second
	}

	sessionTTL := 30 * time.Minute
	if s := os.Getenv("CALIBRATION_SESSION_TTL_MINUTES"); s != "" {
		mins, err := strconv.Atoi(s)
		if err != nil || mins <= 0 {
			return nil, fmt.Errorf("invalid CALIBRATION_SESSION_TTL_MINUTES %q", s)
		}
		sessionTTL = time.Duration(mins) * time.Minute
	}
	if overrides.SessionTTL != nil {
		sessionTTL = *overrides.SessionTTL
	}

	maxRetries := 3
	if s := os.Getenv("POSTING_MAX_RETRIES"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid POSTING_MAX_RETRIES %q", s)
		}
		maxRetries = n
	}

	adminSecret := os.Getenv("CAREON_ADMIN_SECRET")
	adminHash := os.Getenv("CAREON_ADMIN_PASSWORD_HASH")
	if adminSecret != "" && adminHash == "" {
		return nil, fmt.Errorf("CAREON_ADMIN_PASSWORD_HASH is required when CAREON_ADMIN_SECRET is set")
	}

	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if o := os.Getenv("ALLOWED_ORIGINS"); o != "" {
		origins = []string{o}
	}

	return &Config{
		Addr:              addr,
		DatabasePath:      dbPath,
		Debug:             debug,
		LogLevel:          os.Getenv("LOG_LEVEL"),
		AllowedOrigins:    origins,
		AdminSecret:       adminSecret,
		AdminPasswordHash: adminHash,
		ADBPath:           adbPath,
		ADBTimeout:        adbTimeout,
		SessionTTL:        sessionTTL,
		MaxRetries:        maxRetries,
	}, nil
}
