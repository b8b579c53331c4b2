// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is an error with context for user-facing error messages:
	// what was being attempted, which module or file was involved, and how to
	// fix it. When Issue is set, the catalog entry's hints are listed after
	// the explicit suggestions.
	//
	//	err := issue.Wrap(cause, "launch module",
	//		issue.WithResource("com.example.hello/^1.0.0"),
	//		issue.WithIssue(issue.ModuleNotFoundId))
	ActionableError struct {
		// Operation is a verb phrase such as "launch module".
		Operation string
		// Resource names the module, file or directory involved (optional).
		Resource string
		// Issue is the catalog entry describing the failure (optional).
		Issue Id
		// Suggestions are hints specific to this failure (optional).
		Suggestions []string
		// Cause is the underlying error (optional).
		Cause error
	}

	// Option configures an ActionableError.
	Option func(*ActionableError)
)

// WithResource sets the module, file or directory involved.
func WithResource(resource string) Option {
	return func(e *ActionableError) { e.Resource = resource }
}

// WithSuggestions appends hints on how to fix the failure.
func WithSuggestions(suggestions ...string) Option {
	return func(e *ActionableError) { e.Suggestions = append(e.Suggestions, suggestions...) }
}

// WithIssue links the error to a catalog entry.
func WithIssue(id Id) Option {
	return func(e *ActionableError) { e.Issue = id }
}

// New returns an ActionableError without an underlying cause.
func New(operation string, opts ...Option) *ActionableError {
	e := &ActionableError{Operation: operation}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wrap returns err with operation context, or nil when err is nil.
func Wrap(err error, operation string, opts ...Option) error {
	if err == nil {
		return nil
	}
	e := New(operation, opts...)
	e.Cause = err
	return e
}

// Error returns the concise single-line message.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(" ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the underlying cause error for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Entry returns the linked catalog entry, or nil.
func (e *ActionableError) Entry() *Issue {
	if e.Issue == 0 {
		return nil
	}
	return Get(e.Issue)
}

// Hints returns the explicit suggestions followed by the catalog hints,
// without duplicates.
func (e *ActionableError) Hints() []string {
	hints := make([]string, 0, len(e.Suggestions))
	seen := make(map[string]bool)
	add := func(list []string) {
		for _, h := range list {
			if !seen[h] {
				seen[h] = true
				hints = append(hints, h)
			}
		}
	}
	add(e.Suggestions)
	if entry := e.Entry(); entry != nil {
		add(entry.Hints())
	}
	return hints
}

// Format returns the message followed by one hint per line:
//
//	failed to <operation> <resource>: <cause>
//
//	  • <hint>
//
// In verbose mode every distinct message of the error chain is listed too.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if hints := e.Hints(); len(hints) > 0 {
		msg.WriteString("\n")
		for _, h := range hints {
			msg.WriteString("\n  • ")
			msg.WriteString(h)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth, prev := 1, ""
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			// Skip links that wrap without adding text.
			if text := err.Error(); text != prev {
				fmt.Fprintf(&msg, "\n  %d. %s", depth, text)
				prev = text
				depth++
			}
		}
	}
	return msg.String()
}
