package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the application configuration, loaded from the environment.
type Config struct {
	// HTTP front-end
	Port       string
	SessionKey string
	CSRFKey    string

	// Backend selection: rest, sqlite or memory
	DataBackend string

	// REST backend (remote Supabase-style API)
	BackendURL    string
	BackendAPIKey string

	// SQLite backend (self-hosted)
	SQLiteDBPath string
	JWTSecret    string

	// Registration gate and mail redirect target
	InviteCode string
	SiteURL    string

	// Upcoming-bills lookahead in days
	UpcomingDays int

	// DevMode relaxes cookie security for plain-HTTP local setups.
	DevMode bool
}

func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8082"),
		SessionKey: getEnv("SESSION_KEY", ""),
		CSRFKey:    getEnv("CSRF_KEY", ""),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		BackendURL:    getEnv("BACKEND_URL", ""),
		BackendAPIKey: getEnv("BACKEND_API_KEY", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		InviteCode: getEnv("INVITE_CODE", "1006"),
		SiteURL:    getEnv("SITE_URL", ""),

		UpcomingDays: getEnvInt("UPCOMING_BILL_DAYS", 14),

		DevMode: getEnv("DEV_MODE", "") == "true",
	}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "rest":
		if c.BackendURL == "" {
			problems = append(problems, "BACKEND_URL is required for the rest backend")
		} else if u, err := url.Parse(c.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("invalid BACKEND_URL %q: must be an http(s) URL", c.BackendURL))
		}
		if c.BackendAPIKey == "" {
			problems = append(problems, "BACKEND_API_KEY is required for the rest backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create database directory %q: %v", dir, err))
				}
			}
		}
		if c.JWTSecret == "" {
			problems = append(problems, "JWT_SECRET is required for the sqlite backend")
		}
	case "memory":
		// nothing to check
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be one of rest, sqlite, memory", c.DataBackend))
	}

	if c.InviteCode == "" {
		problems = append(problems, "INVITE_CODE cannot be empty: registration is invite-gated")
	}

	if c.UpcomingDays < 1 || c.UpcomingDays > 90 {
		problems = append(problems, fmt.Sprintf("invalid upcoming-bills lookahead %d: must be between 1 and 90 days", c.UpcomingDays))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
