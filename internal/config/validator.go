package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "convert.workers")
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
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOffsets returns the accepted quality.offset values
func ValidOffsets() []string {
	return []string{"33", "64", "auto"}
}

// ValidInputs returns the accepted convert.input values
func ValidInputs() []string {
	return []string{"lines", "fastq"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Convert.Workers < 1 {
		errs = append(errs, ValidationError{"convert.workers", c.Convert.Workers, "must be at least 1"})
	}
	if c.Convert.BlockSize < 1 {
		errs = append(errs, ValidationError{"convert.block_size", c.Convert.BlockSize, "must be at least 1"})
	}
	if !slices.Contains(ValidInputs(), c.Convert.Input) {
		errs = append(errs, ValidationError{"convert.input", c.Convert.Input, "must be one of " + strings.Join(ValidInputs(), ", ")})
	}
	if !slices.Contains(ValidOffsets(), c.Quality.Offset) {
		errs = append(errs, ValidationError{"quality.offset", c.Quality.Offset, "must be one of " + strings.Join(ValidOffsets(), ", ")})
	}
	if c.Bin.Count < 1 {
		errs = append(errs, ValidationError{"bin.count", c.Bin.Count, "must be at least 1"})
	}
	if c.Grid.BinsX < 1 {
		errs = append(errs, ValidationError{"grid.bins_x", c.Grid.BinsX, "must be at least 1"})
	}
	if c.Grid.BinsY < 1 {
		errs = append(errs, ValidationError{"grid.bins_y", c.Grid.BinsY, "must be at least 1"})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{"logging.level", c.Logging.Level, "must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}

	return errs
}
