package errors

import (
	"fmt"
	"log/slog"
)

// Category represents the subsystem a diagnostic belongs to.
type Category string

const (
	CategoryReactivity Category = "reactivity"
	CategoryComponent  Category = "component"
	CategoryScheduler  Category = "scheduler"
	CategoryHydration  Category = "hydration"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// Severity distinguishes logged warnings from returned errors.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a structured, coded runtime message.
type Diagnostic struct {
	// Code is a unique identifier (e.g., "R002").
	Code string

	// Category is the subsystem that raised the diagnostic.
	Category Category

	// Severity tells whether the condition was tolerated or returned.
	Severity Severity

	// Message is a short description.
	Message string

	// Detail carries the specific key, component or value involved.
	Detail string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// DocURL is a link to documentation about this code.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	msg := d.Message
	if d.Detail != "" {
		msg += ": " + d.Detail
	}
	if d.Code != "" {
		msg = fmt.Sprintf("%s: %s", d.Code, msg)
	}
	if d.Wrapped != nil {
		msg += ": " + d.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (d *Diagnostic) Unwrap() error {
	return d.Wrapped
}

// WithDetail adds the specific context of this occurrence.
func (d *Diagnostic) WithDetail(detail string) *Diagnostic {
	d.Detail = detail
	return d
}

// WithDetailf is WithDetail with formatting.
func (d *Diagnostic) WithDetailf(format string, args ...any) *Diagnostic {
	d.Detail = fmt.Sprintf(format, args...)
	return d
}

// WithSuggestion adds a fix suggestion.
func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestion = s
	return d
}

// Wrap wraps another error.
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.Wrapped = err
	return d
}

// Attrs returns slog key/value pairs describing the diagnostic.
// The message itself is expected to be passed as the log message.
func (d *Diagnostic) Attrs() []any {
	attrs := []any{slog.String("code", d.Code)}
	if d.Detail != "" {
		attrs = append(attrs, slog.String("detail", d.Detail))
	}
	if d.Wrapped != nil {
		attrs = append(attrs, slog.Any("error", d.Wrapped))
	}
	return attrs
}

// Log writes the diagnostic to logger at a level matching its severity.
// Extra attributes are appended after the diagnostic's own.
func (d *Diagnostic) Log(logger *slog.Logger, extra ...any) {
	if logger == nil {
		return
	}
	attrs := append(d.Attrs(), extra...)
	if d.Severity == SeverityError {
		logger.Error(d.Message, attrs...)
		return
	}
	logger.Warn(d.Message, attrs...)
}

// New creates a Diagnostic from a registered code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:     code,
			Severity: SeverityError,
			Message:  "Unknown error",
		}
	}
	return &Diagnostic{
		Code:     code,
		Category: template.Category,
		Severity: template.Severity,
		Message:  template.Message,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded error-severity Diagnostic with a formatted message.
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a Diagnostic.
func FromError(err error, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	if d, ok := err.(*Diagnostic); ok {
		return d
	}
	return New(code).Wrap(err)
}
