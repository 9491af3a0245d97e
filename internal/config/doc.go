// Package config handles configuration loading, parsing, and validation.
// Settings come from defaults, an optional config.yaml, an optional .env file
// and HUDDLE_-prefixed environment variables, and are validated with
// go-playground/validator before the rest of the application sees them.
package config
