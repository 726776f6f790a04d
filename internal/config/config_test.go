package config

import (
	"strings"
	"testing"
)

func valid() *Config {
	return &Config{
		Port:         "8082",
		DataBackend:  "memory",
		InviteCode:   "1006",
		UpcomingDays: 14,
	}
}

func TestValidateOK(t *testing.T) {
	if err := valid().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidatePort(t *testing.T) {
	for _, port := range []string{"", "abc", "0", "70000"} {
		c := valid()
		c.Port = port
		if err := c.Validate(); err == nil {
			t.Fatalf("port %q: expected error", port)
		}
	}
}

func TestValidateRestBackend(t *testing.T) {
	c := valid()
	c.DataBackend = "rest"
	err := c.Validate()
	if err == nil {
		t.Fatalf("rest backend without URL/key must fail")
	}
	if !strings.Contains(err.Error(), "BACKEND_URL") || !strings.Contains(err.Error(), "BACKEND_API_KEY") {
		t.Fatalf("expected both problems reported, got %v", err)
	}

	c.BackendURL = "https://example.supabase.co"
	c.BackendAPIKey = "anon"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	c.BackendURL = "ftp://nope"
	if err := c.Validate(); err == nil {
		t.Fatalf("non-http URL must fail")
	}
}

func TestValidateSQLiteBackend(t *testing.T) {
	c := valid()
	c.DataBackend = "sqlite"
	c.SQLiteDBPath = t.TempDir() + "/fin.db"
	if err := c.Validate(); err == nil {
		t.Fatalf("sqlite backend without JWT secret must fail")
	}
	c.JWTSecret = "secret"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	c := valid()
	c.DataBackend = "sheets"
	if err := c.Validate(); err == nil {
		t.Fatalf("unknown backend must fail")
	}
}

func TestValidateLookahead(t *testing.T) {
	c := valid()
	c.UpcomingDays = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("zero lookahead must fail")
	}
}
