package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidParser indicates an unknown parser name.
	ErrInvalidParser = errors.New("invalid parser")

	// ErrInvalidLimit indicates a negative size or job count.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrEmptyCommand indicates a missing clang command.
	ErrEmptyCommand = errors.New("empty clang command")
)

// Validate checks cfg and reports every problem found.
func Validate(cfg *Config) error {
	var errs []error

	switch strings.ToLower(cfg.Parser) {
	case ParserAuto, ParserJSON, ParserSource, ParserClang:
	default:
		errs = append(errs, fmt.Errorf("%w: must be one of auto, json, source, clang, got %q", ErrInvalidParser, cfg.Parser))
	}

	if strings.TrimSpace(cfg.Clang.Command) == "" {
		errs = append(errs, fmt.Errorf("%w: clang.command is required", ErrEmptyCommand))
	}

	if cfg.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size cannot be negative, got %d", ErrInvalidLimit, cfg.MaxFileSize))
	}
	if cfg.Jobs < 0 {
		errs = append(errs, fmt.Errorf("%w: jobs cannot be negative, got %d", ErrInvalidLimit, cfg.Jobs))
	}

	return errors.Join(errs...)
}
