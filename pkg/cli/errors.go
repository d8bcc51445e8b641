package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/tensorzero/tensorzero-go/pkg/gateway"
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit code: 0 for nil, 2 for
// configuration and request validation errors, 130 for an interrupted run,
// 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var configErr *ConfigError
	var validationErr *gateway.ValidationError
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return 2
	default:
		return 1
	}
}
