package ciutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/phrazzld/scry-gen/internal/redact"
)

// ErrNotPostgresURL is returned for a test database URL with another scheme.
var ErrNotPostgresURL = errors.New("test database URL must use the postgres scheme")

// TestDatabaseURL returns an existing database for integration tests, or ""
// when none is configured and the caller should start its own.
func TestDatabaseURL(log *slog.Logger) (string, error) {
	return TestDatabaseURLWith(os.Getenv, log)
}

// TestDatabaseURLWith is TestDatabaseURL with an injected lookup.
func TestDatabaseURLWith(getenv func(string) string, log *slog.Logger) (string, error) {
	raw := EnvWithFallbacks(getenv, []string{EnvScryTestDBURL, EnvDatabaseURL, EnvScryDatabaseURL}, "", log)
	if raw == "" {
		return "", nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid test database URL %s: %w", redact.String(raw), err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("%w: got %q", ErrNotPostgresURL, u.Scheme)
	}
	if u.Query().Get("sslmode") == "" && IsCIWith(getenv) {
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
	}

	if log != nil {
		log.Info("using configured test database", "url", redact.String(u.String()))
	}
	return u.String(), nil
}
