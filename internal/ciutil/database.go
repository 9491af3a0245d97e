package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// Connection settings of the database service in CI.
const (
	StandardCIUser     = "postgres"
	StandardCIPassword = "postgres"
	StandardCIPort     = "5432"
	StandardCIDatabase = "huddle_test"
	StandardCIOptions  = "sslmode=disable"
)

// testDatabaseURLVars lists the variables GetTestDatabaseURL reads, in order.
var testDatabaseURLVars = []string{EnvDatabaseURL, EnvHuddleTestDBURL, EnvHuddleDatabaseURL}

// GetTestDatabaseURL returns the database URL for integration tests from
// DATABASE_URL, HUDDLE_TEST_DB_URL or HUDDLE_DATABASE_URL, in that order.
// In CI the URL is rewritten to the standard postgres:postgres credentials and
// the rewritten value is exported back to the variables that were set.
// It returns an empty string if none of them is set.
func GetTestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks(testDatabaseURLVars, "", logger)
	if dbURL == "" {
		if logger != nil {
			logger.Info("no database URL environment variables found")
		}
		return ""
	}

	if !IsCI() {
		return dbURL
	}

	standardized, err := standardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Error("failed to standardize database URL",
				slog.String("error", err.Error()),
				slog.String("original_url", MaskSensitiveValue(dbURL)))
		}
		return dbURL
	}

	if standardized != dbURL {
		if logger != nil {
			logger.Info("standardized database URL for CI",
				slog.String("original", MaskSensitiveValue(dbURL)),
				slog.String("standardized", MaskSensitiveValue(standardized)))
		}
		for _, envVar := range testDatabaseURLVars {
			if os.Getenv(envVar) != "" {
				_ = os.Setenv(envVar, standardized)
			}
		}
	}
	return standardized
}

// standardizeDatabaseURL replaces the credentials of a postgres URL with the
// CI defaults and fills in a missing local port, database name and options.
// Other schemes are returned unchanged.
func standardizeDatabaseURL(dbURL string) (string, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return dbURL, nil
	}

	standardized := *parsed
	standardized.User = url.UserPassword(StandardCIUser, StandardCIPassword)

	host := parsed.Hostname()
	if (host == "localhost" || host == "127.0.0.1") && parsed.Port() == "" {
		standardized.Host = host + ":" + StandardCIPort
	}
	if strings.TrimPrefix(parsed.Path, "/") == "" {
		standardized.Path = "/" + StandardCIDatabase
	}
	if parsed.RawQuery == "" {
		standardized.RawQuery = StandardCIOptions
	}

	return standardized.String(), nil
}
