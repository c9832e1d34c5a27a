package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/decode"
	"github.com/Iron-Ham/cargodeck/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "cargo.stop_grace_period")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Bounds for duration settings
const (
	maxGracePeriod = time.Minute
	minDebounce    = 10 * time.Millisecond
	maxDebounce    = 10 * time.Second
	minMaxLines    = 100
)

// ValidLogLevels returns the logger's levels in the lower case used by
// the config file.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, level := range levels {
		levels[i] = strings.ToLower(level)
	}
	return levels
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateCargo()...)
	errors = append(errors, c.validateConsole()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateCargo validates the CargoConfig
func (c *Config) validateCargo() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Cargo.Path) == "" {
		errors = append(errors, ValidationError{
			Field:   "cargo.path",
			Value:   c.Cargo.Path,
			Message: "must not be empty",
		})
	}

	if c.Cargo.StopGracePeriod <= 0 {
		errors = append(errors, ValidationError{
			Field:   "cargo.stop_grace_period",
			Value:   c.Cargo.StopGracePeriod,
			Message: "must be positive",
		})
	} else if c.Cargo.StopGracePeriod > maxGracePeriod {
		errors = append(errors, ValidationError{
			Field:   "cargo.stop_grace_period",
			Value:   c.Cargo.StopGracePeriod,
			Message: fmt.Sprintf("exceeds maximum of %s", maxGracePeriod),
		})
	}

	for i, kv := range c.Cargo.Env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("cargo.env[%d]", i),
				Value:   kv,
				Message: "must have the form KEY=VALUE",
			})
		}
	}

	return errors
}

// validateConsole validates the ConsoleConfig
func (c *Config) validateConsole() []ValidationError {
	var errors []ValidationError

	if c.Console.Encoding != "" {
		if _, err := decode.New(c.Console.Encoding); err != nil {
			errors = append(errors, ValidationError{
				Field:   "console.encoding",
				Value:   c.Console.Encoding,
				Message: "unknown encoding",
			})
		}
	}

	if _, err := console.ParseColorMode(c.Console.Color); err != nil {
		errors = append(errors, ValidationError{
			Field:   "console.color",
			Value:   c.Console.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(console.ValidColorModes(), ", ")),
		})
	}

	if c.Console.MaxLines < minMaxLines {
		errors = append(errors, ValidationError{
			Field:   "console.max_lines",
			Value:   c.Console.MaxLines,
			Message: fmt.Sprintf("must be at least %d", minMaxLines),
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.Debounce < minDebounce || c.Watch.Debounce > maxDebounce {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce",
			Value:   c.Watch.Debounce,
			Message: fmt.Sprintf("must be between %s and %s", minDebounce, maxDebounce),
		})
	}

	if len(c.Watch.Patterns) == 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.patterns",
			Value:   c.Watch.Patterns,
			Message: "must contain at least one pattern",
		})
	}
	errors = append(errors, validatePatterns("watch.patterns", c.Watch.Patterns)...)
	errors = append(errors, validatePatterns("watch.ignore", c.Watch.Ignore)...)

	return errors
}

func validatePatterns(field string, patterns []string) []ValidationError {
	var errors []ValidationError
	for i, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   p,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}
	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
