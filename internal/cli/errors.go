// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/cody/internal/config"
	"github.com/jeranaias/cody/internal/ollama"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates Ollama could not be reached
	ExitNetworkError = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "config", "chat")
	Action  string // Action being performed (e.g., "init", "load")
	Reason  string // Human-readable reason
	Code    int    // Exit code; zero means derive it from Err
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// configError marks err as a configuration problem.
func configError(action string, err error) error {
	return &CommandError{
		Command: "config",
		Action:  action,
		Reason:  "configuration problem",
		Code:    ExitConfigError,
		Err:     err,
	}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError prints err to stderr in a consistent format.
func DisplayError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		path, _ := config.ConfigPathTOML()
		fmt.Fprintf(os.Stderr, "  Check %s or run 'cody config show'.\n", path)
	}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ce *CommandError
	if errors.As(err, &ce) && ce.Code != 0 {
		return ce.Code
	}
	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return ExitConfigError
	}
	if ollama.IsConnection(err) {
		return ExitNetworkError
	}
	return ExitGeneralError
}
