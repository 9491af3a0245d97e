package ciutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Project root marker files.
const (
	GoModFile    = "go.mod"
	GitDirectory = ".git"
)

// MigrationsPath is the location of the SQL migrations below the project root.
var MigrationsPath = filepath.Join("internal", "platform", "postgres", "migrations")

// maxTraversalDepth bounds the upward search for a project root.
const maxTraversalDepth = 10

var (
	ErrProjectRootNotFound = errors.New("unable to find project root")
	ErrInvalidProjectRoot  = errors.New("invalid project root: no go.mod file found")
)

// FindProjectRoot returns the absolute path of the project root. It checks,
// in order: HUDDLE_PROJECT_ROOT, the GitHub Actions workspace, the GitLab CI
// project directory, and finally walks up from the working directory looking
// for go.mod or .git.
func FindProjectRoot(logger *slog.Logger) (string, error) {
	candidates := []struct {
		source string
		dir    string
		ok     bool
	}{
		{EnvHuddleProjectRoot, os.Getenv(EnvHuddleProjectRoot), os.Getenv(EnvHuddleProjectRoot) != ""},
		{EnvGitHubWorkspace, os.Getenv(EnvGitHubWorkspace), IsGitHubActions()},
		{EnvGitLabProjectDir, os.Getenv(EnvGitLabProjectDir), IsGitLabCI()},
	}
	for _, c := range candidates {
		if !c.ok {
			continue
		}
		if logger != nil {
			logger.Info("using project root from environment",
				slog.String("source", c.source),
				slog.String("project_root", c.dir))
		}
		if !isValidProjectRoot(c.dir) {
			return "", fmt.Errorf("%w at %s", ErrInvalidProjectRoot, c.dir)
		}
		return c.dir, nil
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return findProjectRootByTraversal(workingDir, logger)
}

// findProjectRootByTraversal walks up from startDir until a directory holds
// go.mod or .git.
func findProjectRootByTraversal(startDir string, logger *slog.Logger) (string, error) {
	currentDir := startDir
	for i := 0; i < maxTraversalDepth; i++ {
		if fileExists(filepath.Join(currentDir, GoModFile)) || dirExists(filepath.Join(currentDir, GitDirectory)) {
			if logger != nil {
				logger.Debug("found project root", slog.String("project_root", currentDir))
			}
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	if logger != nil {
		logger.Error("failed to find project root by directory traversal",
			slog.String("start_dir", startDir))
	}
	return "", ErrProjectRootNotFound
}

// FindMigrationsDir returns the absolute path of the migrations directory.
func FindMigrationsDir(logger *slog.Logger) (string, error) {
	projectRoot, err := FindProjectRoot(logger)
	if err != nil {
		return "", fmt.Errorf("failed to find project root: %w", err)
	}

	migrationsPath := filepath.Join(projectRoot, MigrationsPath)
	if !dirExists(migrationsPath) {
		return "", fmt.Errorf("migrations directory not found at %s", migrationsPath)
	}
	return migrationsPath, nil
}

func isValidProjectRoot(dir string) bool {
	return dirExists(dir) && fileExists(filepath.Join(dir, GoModFile))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
