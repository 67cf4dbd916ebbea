package ciutil

import (
	"log/slog"
	"os"
)

// Environment variables read by this package.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	EnvScryTestDBURL   = "SCRY_TEST_DB_URL" // preferred
	EnvDatabaseURL     = "DATABASE_URL"
	EnvScryDatabaseURL = "SCRY_DATABASE_URL"
)

// IsCI reports whether a CI provider's marker variable is set.
func IsCI() bool {
	return IsCIWith(os.Getenv)
}

// IsCIWith is IsCI with an injected lookup.
func IsCIWith(getenv func(string) string) bool {
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if getenv(name) != "" {
			return true
		}
	}
	return false
}

// EnvWithFallbacks returns the first non-empty variable among names, or
// defaultValue. Using anything but the first name logs a warning.
func EnvWithFallbacks(getenv func(string) string, names []string, defaultValue string, log *slog.Logger) string {
	for i, name := range names {
		val := getenv(name)
		if val == "" {
			continue
		}
		if i > 0 && log != nil {
			log.Warn("using fallback environment variable",
				"used_var", name,
				"preferred_var", names[0])
		}
		return val
	}
	return defaultValue
}
