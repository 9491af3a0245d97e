// Package ciutil detects the execution environment (CI or local) and resolves
// environment-specific settings: the test database URL and the project root
// used to locate migration files.
package ciutil
