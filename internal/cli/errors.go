package cli

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/fatih/color"
)

// ConfigError marks a failure to build a valid configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "invalid configuration: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return apperr.ExitSuccess
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return apperr.ExitConfig
	}
	if ae, ok := apperr.As(err); ok {
		return ae.ExitCode()
	}
	return apperr.ExitInternal
}

// FormatError renders a command error for the terminal.
func FormatError(err error, colored bool) string {
	if ae, ok := apperr.As(err); ok {
		return ae.Format(colored)
	}
	red := color.New(color.FgRed, color.Bold)
	if !colored {
		red.DisableColor()
	}
	return fmt.Sprintf("%s%v\n", red.Sprint("Error: "), err)
}
