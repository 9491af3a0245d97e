package ciutil

import (
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// Environment variable names read by this package.
const (
	EnvCI               = "CI"
	EnvGitHubActions    = "GITHUB_ACTIONS"
	EnvGitHubWorkspace  = "GITHUB_WORKSPACE"
	EnvGitLabCI         = "GITLAB_CI"
	EnvGitLabProjectDir = "CI_PROJECT_DIR"
	EnvJenkinsURL       = "JENKINS_URL"
	EnvCircleCI         = "CIRCLECI"

	EnvHuddleProjectRoot = "HUDDLE_PROJECT_ROOT"

	EnvDatabaseURL       = "DATABASE_URL"
	EnvHuddleTestDBURL   = "HUDDLE_TEST_DB_URL"
	EnvHuddleDatabaseURL = "HUDDLE_DATABASE_URL"
)

// IsCI returns true if any common CI provider variable is set.
func IsCI() bool {
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// IsGitHubActions returns true when running in GitHub Actions with a workspace.
func IsGitHubActions() bool {
	return os.Getenv(EnvGitHubActions) != "" && os.Getenv(EnvGitHubWorkspace) != ""
}

// IsGitLabCI returns true when running in GitLab CI with a project directory.
func IsGitLabCI() bool {
	return os.Getenv(EnvGitLabCI) != "" && os.Getenv(EnvGitLabProjectDir) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty variable in
// envVars, or defaultValue if none is set. Using any but the first name logs
// a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using fallback environment variable",
				slog.String("used_var", envVar),
				slog.String("preferred_var", envVars[0]),
				slog.String("value", MaskSensitiveValue(val)))
		}
		return val
	}
	return defaultValue
}

// MaskSensitiveValue hides the password of database URLs and the middle of
// values that look like keys or tokens, so they can be logged.
func MaskSensitiveValue(value string) string {
	if strings.HasPrefix(value, "postgres://") || strings.HasPrefix(value, "postgresql://") {
		parsed, err := url.Parse(value)
		if err != nil {
			return "invalid-url"
		}
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "****")
		}
		return parsed.String()
	}

	lower := strings.ToLower(value)
	if len(value) > 8 && (strings.Contains(lower, "key") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret")) {
		return value[:4] + "****" + value[len(value)-4:]
	}

	return value
}

// Provider names the CI system the process runs in, "ci" for an unrecognized
// one, or "" outside CI.
func Provider() string {
	switch {
	case os.Getenv(EnvGitHubActions) != "":
		return "github_actions"
	case os.Getenv(EnvGitLabCI) != "":
		return "gitlab"
	case os.Getenv(EnvJenkinsURL) != "":
		return "jenkins"
	case os.Getenv(EnvCircleCI) != "":
		return "circleci"
	case os.Getenv(EnvCI) != "":
		return "ci"
	default:
		return ""
	}
}

// Metadata returns identifying attributes of the current CI run: the provider
// plus the run ID and commit when the provider exposes them. It is empty
// outside CI.
func Metadata() map[string]string {
	provider := Provider()
	if provider == "" {
		return map[string]string{}
	}

	md := map[string]string{"ci_provider": provider}
	if v := GetEnvWithFallbacks([]string{"GITHUB_RUN_ID", "CI_PIPELINE_ID", "BUILD_ID", "CIRCLE_BUILD_NUM"}, "", nil); v != "" {
		md["ci_run_id"] = v
	}
	if v := GetEnvWithFallbacks([]string{"GITHUB_SHA", "CI_COMMIT_SHA", "GIT_COMMIT", "CIRCLE_SHA1"}, "", nil); v != "" {
		md["ci_commit"] = v
	}
	return md
}
