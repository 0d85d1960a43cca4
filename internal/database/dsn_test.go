package database

import (
	"strings"
	"testing"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User: "boardsync",
		Name: "boardsync",
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "host=localhost port=5432 user=boardsync dbname=boardsync sslmode=disable"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "pass",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"host=db.example.com",
		"port=6543",
		"user=user",
		"dbname=db",
		"password=pass",
		"sslmode=require",
		"search_path=public",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	if _, err := buildPostgresDSN(Config{}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User: "boardsync",
		Name: "boardsync",
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "boardsync@tcp(127.0.0.1:3306)/boardsync?charset=utf8mb4&loc=Local&parseTime=True"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildMySQLDSNWithOptions(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "user",
		Password: "secret",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options: map[string]string{
			"tls": "skip-verify",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"user:secret@tcp(db.example.com:3307)/db?",
		"charset=utf8mb4",
		"loc=Local",
		"parseTime=True",
		"tls=skip-verify",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildMySQLDSNRequiresUserAndName(t *testing.T) {
	if _, err := buildMySQLDSN(Config{Host: "localhost"}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func containsAll(value string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}

func TestBuildPostgresDSNSkipsPoolOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User: "boardsync",
		Name: "boardsync",
		Options: map[string]string{
			"max_open_conns": "50",
			"sslmode":        "require",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}
	if strings.Contains(dsn, "max_open_conns") {
		t.Fatalf("pool options must not leak into the dsn: %q", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Fatalf("expected sslmode override in %q", dsn)
	}
}

func TestParseIntOption(t *testing.T) {
	opts := map[string]string{"max_idle_conns": " 7 ", "max_open_conns": "many"}
	if got := parseIntOption(opts, "max_idle_conns"); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := parseIntOption(opts, "max_open_conns"); got != 0 {
		t.Fatalf("expected 0 for malformed value, got %d", got)
	}
	if got := portOr(parseIntOption(nil, "missing"), 20); got != 20 {
		t.Fatalf("expected fallback, got %d", got)
	}
}
