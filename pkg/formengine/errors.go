package formengine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Stable failure codes reported to callers.
const (
	CodeTemplateNotFound     = "TEMPLATE_NOT_FOUND"
	CodeRenderError          = "RENDER_ERROR"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeListError            = "LIST_ERROR"
	CodeInfoError            = "INFO_ERROR"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeMissingRequiredForms = "MISSING_REQUIRED_FORMS"
)

// ErrCacheDisabled is returned by cache lookups when caching is turned off.
var ErrCacheDisabled = errors.New("template cache is disabled")

// TemplateNotFoundError reports a template name with no file behind it.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Name)
}

// RenderError wraps a load or save failure of a render call.
type RenderError struct {
	Op       string
	Template string
	Cause    error
}

func (e *RenderError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("render %s failed during %s: %v", e.Template, e.Op, e.Cause)
	}
	return fmt.Sprintf("render failed during %s: %v", e.Op, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ConversionUnavailableError reports a converter that is missing or exited
// with an error.
type ConversionUnavailableError struct {
	Command string
	Cause   error
}

func (e *ConversionUnavailableError) Error() string {
	return fmt.Sprintf("converter %s unavailable: %v", e.Command, e.Cause)
}

func (e *ConversionUnavailableError) Unwrap() error {
	return e.Cause
}

// ConversionTimeoutError reports a converter that exceeded its time budget.
type ConversionTimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *ConversionTimeoutError) Error() string {
	return fmt.Sprintf("converter %s timed out after %s", e.Command, e.Timeout)
}

// ValidationIssue is a single problem with render input.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects input problems found before rendering.
type ValidationError struct {
	Template string
	Issues   []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	parts := []string{fmt.Sprintf("%d validation issues:", len(e.Issues))}
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// Failure is the structured form of an error handed to callers.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f Failure) Error() string {
	return f.Code + ": " + f.Message
}

// coder is implemented by errors that carry their own failure code.
type coder interface {
	Code() string
}

// ErrorCode maps an error to its stable failure code.
func ErrorCode(err error) string {
	var (
		notFound *TemplateNotFoundError
		invalid  *ValidationError
		failure  Failure
		c        coder
	)
	switch {
	case errors.As(err, &notFound):
		return CodeTemplateNotFound
	case errors.As(err, &invalid):
		return CodeValidationError
	case errors.As(err, &failure):
		return failure.Code
	case errors.As(err, &c):
		return c.Code()
	default:
		return CodeRenderError
	}
}

// ToFailure converts an error into a Failure. A nil error yields nil.
func ToFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f Failure
	if errors.As(err, &f) {
		return &f
	}
	return &Failure{Code: ErrorCode(err), Message: err.Error()}
}

// IsTemplateNotFound reports whether err is a TemplateNotFoundError.
func IsTemplateNotFound(err error) bool {
	var e *TemplateNotFoundError
	return errors.As(err, &e)
}

// IsConversionError reports whether err is a converter failure.
func IsConversionError(err error) bool {
	var (
		unavailable *ConversionUnavailableError
		timeout     *ConversionTimeoutError
	)
	return errors.As(err, &unavailable) || errors.As(err, &timeout)
}
