// Package apperr defines the error taxonomy shared by the resolver, the
// write-path services and the tool handlers.
//
// Every failure a user can act on is an *Error carrying a Kind, a
// user-facing Message, an optional Fix suggestion and, for ambiguous name
// lookups, the candidate list. Tool handlers convert any error into text with
// Text; errors that are not *Error are treated as store failures.
//
// Exit codes are used by the CLI when the server cannot start:
//   - ExitConfig (1): invalid or unreadable configuration
//   - ExitDatabase (2): the database could not be opened or migrated
//   - ExitInput (4): bad command-line input
//   - ExitInternal (10): anything else
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for CLI failures.
const (
	ExitSuccess  = 0
	ExitConfig   = 1
	ExitDatabase = 2
	ExitInput    = 4
	ExitInternal = 10
)

// Kind classifies an error for the caller.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindAmbiguous        Kind = "ambiguous"
	KindConflict         Kind = "conflict"
	KindInvalidFormat    Kind = "invalid_format"
	KindInvertedRange    Kind = "inverted_range"
	KindDependentRecords Kind = "dependent_records"
	KindInvalidReference Kind = "invalid_reference"
	KindInvalidInput     Kind = "invalid_input"
	KindStoreFailure     Kind = "store_failure"
)

// Error is a user-facing failure with structured context.
type Error struct {
	Kind Kind

	// Message describes what went wrong.
	Message string

	// Fix is an actionable suggestion, empty when there is none.
	Fix string

	// Candidates lists the display labels of every match when Kind is
	// KindAmbiguous.
	Candidates []string

	// Field names the offending input for KindInvalidReference and
	// KindInvalidInput.
	Field string

	// Count carries the number of dependent records for KindDependentRecords.
	Count int

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Text renders the error as the message shown to the end user.
func (e *Error) Text() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Kind == KindStoreFailure && e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Candidates) > 0 {
		b.WriteString("\n")
		for i, c := range e.Candidates {
			fmt.Fprintf(&b, "\n%d. %s", i+1, c)
		}
		b.WriteString("\n")
	}
	if e.Fix != "" {
		fmt.Fprintf(&b, "\n%s", e.Fix)
	}
	return b.String()
}

// Format renders the error for a terminal, optionally colored.
func (e *Error) Format(colored bool) string {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	if !colored {
		red.DisableColor()
		yellow.DisableColor()
	}

	var b strings.Builder
	b.WriteString(red.Sprint("Error: "))
	b.WriteString(e.Message)
	b.WriteString("\n")
	if e.Err != nil {
		fmt.Fprintf(&b, "Cause: %v\n", e.Err)
	}
	if e.Fix != "" {
		b.WriteString(yellow.Sprint("Fix:   "))
		b.WriteString(e.Fix)
		b.WriteString("\n")
	}
	return b.String()
}

// ExitCode maps the error to a process exit code.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindStoreFailure:
		return ExitDatabase
	case KindInvalidInput, KindInvalidFormat:
		return ExitInput
	default:
		return ExitInternal
	}
}

// NotFound reports that a named reference matched nothing.
func NotFound(entity, query, scope string) *Error {
	msg := fmt.Sprintf("%s %q not found", capitalize(entity), query)
	if scope != "" {
		msg += " " + scope
	}
	return &Error{
		Kind:    KindNotFound,
		Message: msg + ".",
		Fix:     fmt.Sprintf("Check the spelling or search for the %s first.", entity),
	}
}

// Ambiguous reports that a named reference matched several records.
func Ambiguous(entity, query, scope string, candidates []string) *Error {
	msg := fmt.Sprintf("Found %d %ss matching %q", len(candidates), entity, query)
	if scope != "" {
		msg += " " + scope
	}
	return &Error{
		Kind:       KindAmbiguous,
		Message:    msg + ":",
		Candidates: candidates,
		Fix:        fmt.Sprintf("Please repeat the request with the exact %s name.", entity),
	}
}

// Conflict reports a uniqueness violation within a scope.
func Conflict(entity, name, scope string) *Error {
	msg := fmt.Sprintf("A %s named %q already exists", entity, name)
	if scope != "" {
		msg += " " + scope
	}
	return &Error{
		Kind:    KindConflict,
		Message: msg + ".",
		Fix:     fmt.Sprintf("Choose a different %s name.", entity),
	}
}

// InvalidFormat reports a malformed date (or other formatted) input.
func InvalidFormat(field, value, expected string) *Error {
	return &Error{
		Kind:    KindInvalidFormat,
		Field:   field,
		Message: fmt.Sprintf("Invalid %s %q.", field, value),
		Fix:     fmt.Sprintf("Use the format %s.", expected),
	}
}

// InvertedRange reports a start date after the end date.
func InvertedRange() *Error {
	return &Error{
		Kind:    KindInvertedRange,
		Message: "The start date cannot be later than the end date.",
	}
}

// DependentRecords reports a delete blocked by children.
func DependentRecords(entity, name string, count int) *Error {
	return &Error{
		Kind:    KindDependentRecords,
		Count:   count,
		Message: fmt.Sprintf("Cannot delete %s %q: it has %d dependent record(s).", entity, name, count),
		Fix:     "Repeat the request with cascade=true to delete it together with all dependent records.",
	}
}

// InvalidReference reports a foreign identifier that does not exist.
func InvalidReference(field, id string) *Error {
	return &Error{
		Kind:    KindInvalidReference,
		Field:   field,
		Message: fmt.Sprintf("The referenced %s (%s) does not exist.", strings.ReplaceAll(field, "_", " "), id),
	}
}

// InvalidInput reports a missing or malformed argument.
func InvalidInput(field, message string) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Field:   field,
		Message: message,
	}
}

// StoreFailure wraps an error returned by the backing store.
func StoreFailure(op string, err error) *Error {
	return &Error{
		Kind:    KindStoreFailure,
		Message: fmt.Sprintf("Database error while trying to %s", op),
		Err:     err,
	}
}

// Wrap passes *Error values through unchanged and turns any other error into
// a StoreFailure for op. It returns nil for a nil err.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return StoreFailure(op, err)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindStoreFailure for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindStoreFailure
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Text renders any error for the end user.
func Text(err error) string {
	if e, ok := As(err); ok {
		return e.Text()
	}
	return StoreFailure("complete the request", err).Text()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
